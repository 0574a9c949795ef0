// Package events reads records from a perf event array or ring buffer map.
//
// A Reader starts Active. An overwritable reader lets the kernel keep
// writing over old records, so it can only be read once paused:
//
//	r, _ := events.NewReader(env, m, 4096, true)
//	defer r.Close()
//	r.Pause()
//	r.Read(buf) // most recent record
//	r.Resume()
package events
