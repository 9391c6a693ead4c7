package main

import "github.com/MeKo-Tech/zimage/internal/cmd"

func main() {
	cmd.Execute()
}
