package outline

import (
	"cmp"
	"math"
	"slices"
)

// heading is an accepted candidate awaiting assembly.
type heading struct {
	BlockProps
	page  int
	index *pageIndex
}

// mergeWrapped sorts headings by (page, top, left) and joins consecutive
// headings on the same page that share a top edge (within 2 units) and a
// font size (within 1pt).
func mergeWrapped(hs []heading) []heading {
	if len(hs) == 0 {
		return nil
	}
	slices.SortStableFunc(hs, func(a, b heading) int {
		return cmp.Or(
			cmp.Compare(a.page, b.page),
			cmp.Compare(a.BBox.Y0, b.BBox.Y0),
			cmp.Compare(a.BBox.X0, b.BBox.X0),
		)
	})

	merged := make([]heading, 0, len(hs))
	cur := hs[0]
	for _, next := range hs[1:] {
		if cur.page == next.page &&
			math.Abs(cur.BBox.Y0-next.BBox.Y0) < 2 &&
			math.Abs(cur.FontSize-next.FontSize) < 1 {
			cur.Text += " " + next.Text
			cur.BBox = cur.BBox.Union(next.BBox)
			continue
		}
		merged = append(merged, cur)
		cur = next
	}
	merged = append(merged, cur)
	for i := range merged {
		merged[i].Text = collapseSpace(merged[i].Text)
	}
	return merged
}

// assemble turns accepted candidates into the final outline: merge wrapped
// blocks, drop duplicates (the title key counts as already seen), classify
// levels, order by page and repair level skips.
func assemble(hs []heading, titleKey string, profile FontProfile) []Entry {
	seen := map[string]bool{titleKey: true}
	entries := make([]Entry, 0, len(hs))
	for _, h := range mergeWrapped(hs) {
		key := headingKey(h.Text)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		in := LevelInput{
			Text:     h.Text,
			FontSize: h.FontSize,
			Bold:     h.Bold,
			BBox:     h.BBox,
		}
		if h.index != nil {
			in.PageHeight = h.index.page.Height
			in.IndentedBelow = h.index.indentedBelow(h.BBox)
		}
		entries = append(entries, Entry{Level: ClassifyLevel(in, profile), Text: h.Text, Page: h.page})
	}
	sortByPage(entries)
	return repairHierarchy(entries)
}

func sortByPage(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int { return cmp.Compare(a.Page, b.Page) })
}

// repairHierarchy demotes an H3 that directly follows an H1 to H2.
func repairHierarchy(entries []Entry) []Entry {
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Level == H1 && entries[i].Level == H3 {
			entries[i].Level = H2
		}
	}
	return entries
}

// Finalize applies deduplication, page ordering and hierarchy repair to an
// outline produced by another source, such as a markup document's explicit
// headings.
func Finalize(title string, entries []Entry) Result {
	seen := map[string]bool{headingKey(title): true}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		e.Text = collapseSpace(e.Text)
		key := headingKey(e.Text)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if e.Page < 1 {
			e.Page = 1
		}
		out = append(out, e)
	}
	sortByPage(out)
	return Result{Title: collapseSpace(title), Outline: repairHierarchy(out)}
}
