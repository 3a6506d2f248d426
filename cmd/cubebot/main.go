// Cubebot - CLI application for driving a two-armed Rubik's Cube solving robot.
package main

import (
	"github.com/SeamusWaldron/cubebot/internal/cli"
)

func main() {
	cli.Execute()
}
