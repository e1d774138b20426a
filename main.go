package main

import "github.com/bobndungu/boxtasks-prod-sub004/cmd"

func main() {
	cmd.Execute()
}
