// Command sierpinski draws a depth 8 Sierpinski triangle.
package main

import (
	"runtime"

	"github.com/andewx/vkframe"
	"github.com/xlab/closer"
)

const depth = 8

func init() {
	runtime.LockOSThread()
}

func main() {
	defer closer.Close()

	usage, err := vkframe.UsageFromEnv("VKFRAME")
	if err != nil {
		closer.Fatalln(err)
	}
	cfg, err := usage.Config(vkframe.DefaultConfig("Sierpinski"))
	if err != nil {
		closer.Fatalln(err)
	}

	app, err := vkframe.NewApp(cfg, vkframe.SierpinskiVertices(depth))
	if err != nil {
		closer.Fatalln(err)
	}
	closer.Bind(app.Destroy)

	if err := app.Run(); err != nil {
		closer.Fatalln(err)
	}
}
