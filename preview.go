package atlasgen

// Preview opens the gioui debug window over the atlas pages and items a
// Generator produced. It is the CLI's --preview collaborator: an
// optional, non-core way to look at the packed result before trusting
// atlas.txt to an engine.
func Preview(gen *Generator, items []*Item) error {
	gui := newGui(gen, items)
	return gui.Run()
}
