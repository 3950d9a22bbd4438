// Package model defines the core data structures shared by the stylesheet
// parser, the merge engine and the generator.
//
// # Faces
//
// A FaceKey (subset, family, style, weight) identifies one logical font face.
// Every format fetched from the provider contributes a PartialFace per key,
// which the merge engine folds into a single Face:
//
//	tree := model.NewTree()
//	face, created := tree.Ensure(model.FaceKey{
//	    Subset: "latin", Family: "Open Sans", Style: "normal", Weight: "400",
//	})
//
// # Tree
//
// Tree nests faces as subset → family → style → weight and iterates them in
// discovery order:
//
//	for key, face := range tree.Faces() {
//	    fmt.Println(key, face.DefaultLocalName)
//	}
//
// The ordering is provided by Node, a general string-keyed ordered tree with a
// get-or-create Path operation.
//
// # Formats
//
// Format enumerates the encodings that can be requested (ttf, eot, woff,
// woff2, svg) and maps each to its CSS format() token and file extension.
//
// # Errors
//
// Error carries one of the ErrorKind classifications (network, parse,
// validation, download, write) that abort a run.
package model
