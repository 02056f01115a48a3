// Package simulation plays consecutive blocks headlessly with scripted
// players, carrying each block's committed settings into the next one.
//
// The simulation exercises the real Generator, Session, Clock and history
// Store. Only the human is replaced: a Player looks at each step and decides
// which modalities to confirm. With a zero Timing the clock fires
// immediately, so hundreds of blocks run in milliseconds.
//
// Usage:
//
//	func TestClimb(t *testing.T) {
//	    r := simulation.NewRunner(gen, history.NewMemoryStore())
//	    result, err := r.Run(ctx, simulation.Scenario{
//	        Name:     "climb",
//	        Settings: session.Settings{Level: 1, Clues: 5},
//	        Blocks:   12,
//	        Player:   simulation.Perfect{},
//	    })
//	    simulation.AssertReachesLevel(t, result, constants.MaxLevel, 10)
//	}
package simulation
