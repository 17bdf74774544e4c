// Package conline provides a concurrent console session: many
// goroutines write lines to a shared terminal and read user input lines
// without corrupting each other's output or the in-progress input row.
//
// All terminal mutation is serialized through a bounded control bus
// drained by a single mutation engine, which owns the prompt, the
// line-edit buffer, and the cursor. On top of the bus, two ordering
// primitives are available: Lock (hold the write path exclusively) and
// Stage (accumulate lines locally, flush them as one atomic block).
//
// A minimal session:
//
//	s, err := conline.Start()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer s.Close()
//
//	s.WriteLine(ctx, "hello")
//	line, err := s.ReadLine(ctx)
package conline
