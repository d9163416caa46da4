// Package script exposes a bridge to Lua through gopher-lua.
//
// A Runner owns one Lua state with a preloaded module named "bridge":
//
//	local b = require("bridge")
//	b.score_event("i", 1, 0, 2)
//	b.read_score("i2 0.5 1")
//	b.start()
//	print(b.get_channel("amp"), b.score_time())
//
// Errors from the bridge (for example submitting with no engine bound)
// are raised as Lua errors.
//
// A Lua state is not safe for concurrent use, so a Runner serializes every
// call into it. Several Runners may drive the same bridge from different
// goroutines; the bridge itself is safe for that.
package script
