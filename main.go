package main

import "github.com/Manu343726/rvdb/cmd"

func main() {
	cmd.Execute()
}
