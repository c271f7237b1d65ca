// Package ionengine provides a lazy macro-expansion engine for a
// self-describing data format with binary and text encodings.
//
// Values are decoded lazily: reading a document yields handles that
// resolve scalars and expand macro invocations only when asked, with all
// transient expansion state held in an arena scoped to one top-level
// value.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	ion-engine/          Root package documentation
//	├── stream/          High-level API for reading expanded value streams
//	├── expand/          The expansion engine: evaluator, iterators, system macros
//	├── macro/           Macro definitions, tables, and template compilation
//	├── raw/             Encoding-independent raw source interfaces
//	├── binary/          Binary encoding decoder
//	├── text/            Text encoding parser
//	├── ion/             Core value types: symbols, decimals, timestamps
//	├── errors/          Structured error types for debugging
//	└── cmd/ionview/     CLI viewer for encoded documents
//
// # Quick Start
//
// Read the expanded top-level values of a text document:
//
//	r := stream.NewReader(text.NewStreamReader(src))
//	for {
//	    v, ok, err := r.Next()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if !ok {
//	        break
//	    }
//	    ref, err := v.Read()
//	    // ...
//	}
//
// Template macros are compiled with macro.TemplateBuilder and installed
// into the reader's macro table between top-level values.
package ionengine
