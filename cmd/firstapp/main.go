// Command firstapp draws a single colored triangle and keeps it on screen
// across window resizes.
//
// Settings are read from VKFRAME_* environment variables, for example
// VKFRAME_WIDTH=1280 VKFRAME_VALIDATION=false.
package main

import (
	"runtime"

	"github.com/andewx/vkframe"
	"github.com/xlab/closer"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	defer closer.Close()

	usage, err := vkframe.UsageFromEnv("VKFRAME")
	if err != nil {
		closer.Fatalln(err)
	}
	cfg, err := usage.Config(vkframe.DefaultConfig("Vulkan"))
	if err != nil {
		closer.Fatalln(err)
	}

	app, err := vkframe.NewApp(cfg, vkframe.TriangleVertices())
	if err != nil {
		closer.Fatalln(err)
	}
	closer.Bind(app.Destroy)

	if err := app.Run(); err != nil {
		closer.Fatalln(err)
	}
}
