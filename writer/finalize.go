package writer

import (
	"fmt"
	"sort"

	"github.com/pivotpdftools/pivot-pdf/ir/raw"
)

// Finalize writes everything that had to wait for the full page set:
// page dictionaries, the pages tree, the catalog, the info dictionary,
// the cross-reference table and the trailer. info pairs keep their
// given order. After Finalize the graph rejects further writes.
//
// Any identity that was allocated but never written is reported as an
// error before the xref is emitted; a dangling reference would produce
// a file viewers reject in ways that are painful to diagnose.
func (g *Graph) Finalize(info [][2]string) error {
	if g.finalized {
		return ErrFinalized
	}

	pagesRef := g.AllocateRef()
	kids := raw.Array()
	for i, rec := range g.records {
		pageRef := g.AllocateRef()
		if err := g.WriteObject(pageRef, pageDict(rec, pagesRef)); err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
		kids.Append(raw.Ref(pageRef))
	}

	pages := raw.Dict()
	pages.Set("Type", raw.Name("Pages"))
	pages.Set("Kids", kids)
	pages.Set("Count", raw.Int(int64(len(g.records))))
	if err := g.WriteObject(pagesRef, pages); err != nil {
		return err
	}

	catalogRef := g.AllocateRef()
	catalog := raw.Dict()
	catalog.Set("Type", raw.Name("Catalog"))
	catalog.Set("Pages", raw.Ref(pagesRef))
	if err := g.WriteObject(catalogRef, catalog); err != nil {
		return err
	}

	var infoRef raw.ObjectRef
	if len(info) > 0 {
		dict := raw.Dict()
		for _, kv := range info {
			dict.Set(kv[0], raw.Text(kv[1]))
		}
		infoRef = g.AllocateRef()
		if err := g.WriteObject(infoRef, dict); err != nil {
			return err
		}
	}

	for num := 1; num < g.nextNum; num++ {
		if _, ok := g.offsets[num]; !ok {
			return fmt.Errorf("object %d allocated but never written", num)
		}
	}

	xrefStart := g.offset
	size := g.nextNum
	if err := g.writeString(fmt.Sprintf("xref\n0 %d\n", size)); err != nil {
		return err
	}
	// Entry for object 0: head of the free list.
	if err := g.writeString("0000000000 65535 f\r\n"); err != nil {
		return err
	}
	for num := 1; num < size; num++ {
		if err := g.writeString(fmt.Sprintf("%010d %05d n\r\n", g.offsets[num], 0)); err != nil {
			return err
		}
	}

	trailer := raw.Dict()
	trailer.Set("Size", raw.Int(int64(size)))
	trailer.Set("Root", raw.Ref(catalogRef))
	if infoRef.Num != 0 {
		trailer.Set("Info", raw.Ref(infoRef))
	}
	if err := g.writeString("trailer\n"); err != nil {
		return err
	}
	if err := g.writeBytes(serializeObject(trailer)); err != nil {
		return err
	}
	if err := g.writeString(fmt.Sprintf("\nstartxref\n%d\n%%%%EOF\n", xrefStart)); err != nil {
		return err
	}

	g.finalized = true
	return nil
}

// pageDict builds one deferred page dictionary. Content references
// stay in placement order; resource names are emitted sorted so the
// output is deterministic.
func pageDict(rec *PageRecord, parent raw.ObjectRef) *raw.DictObj {
	page := raw.Dict()
	page.Set("Type", raw.Name("Page"))
	page.Set("Parent", raw.Ref(parent))
	page.Set("MediaBox", raw.Array(
		raw.Int(0), raw.Int(0), raw.Real(rec.Width), raw.Real(rec.Height),
	))

	resources := raw.Dict()
	if len(rec.Fonts) > 0 {
		resources.Set("Font", refDict(rec.Fonts))
	}
	if len(rec.XObjects) > 0 {
		resources.Set("XObject", refDict(rec.XObjects))
	}
	page.Set("Resources", resources)

	contents := raw.Array()
	for _, ref := range rec.Contents {
		contents.Append(raw.Ref(ref))
	}
	page.Set("Contents", contents)
	return page
}

func refDict(m map[string]raw.ObjectRef) *raw.DictObj {
	d := raw.Dict()
	for _, name := range sortedKeys(m) {
		d.Set(name, raw.Ref(m[name]))
	}
	return d
}

func sortedKeys(m map[string]raw.ObjectRef) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
