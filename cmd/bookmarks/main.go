package main

import "github.com/dgallion1/bookmarkd/cmd/bookmarks/cmd"

func main() {
	cmd.Execute()
}
