// Package merge combines the faces parsed from each format's stylesheet into
// one tree and derives deterministic local file names for the font files.
//
//	eng := merge.NewEngine("../fonts/Open Sans", log)
//	for _, f := range faces {
//	    eng.Merge(model.FormatWOFF2, f.Key, f.PartialFace)
//	}
//	tree, tasks := eng.Tree(), eng.Tasks()
//
// File names are "<default local name><ext>" for the default subset and
// "<default local name>-<subset><ext>" otherwise.
package merge
