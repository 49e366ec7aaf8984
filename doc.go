/*
Package atlasgen packs a directory of sprite images into one or more
texture atlases: it extracts each sprite's alpha-driven polygon, packs
the polygons onto fixed-size pages with a no-fit-polygon packer,
extrudes each sprite's border pixels to avoid texture bleeding, and writes a manifest
describing where every sprite landed.

The package provides a command line interface:

	$ atlasgen -out <out_dir> [-force] [-debug] [-item-debug] [-preview] <path>...

In case you wish to integrate the API in a self constructed environment
here is a simple example:

	package main

	import (
		"fmt"
		"github.com/sc-workshop/AtlasGenerator"
	)

	func main() {
		it, err := atlasgen.FromPath("sprite.png", false)
		if err != nil {
			panic(err)
		}

		gen := atlasgen.NewGenerator(atlasgen.DefaultConfig())
		if _, err := gen.Generate([]*atlasgen.Item{it}); err != nil {
			fmt.Printf("Error packing atlas: %s", err.Error())
		}
	}
*/
package atlasgen
