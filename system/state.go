// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package system

import "github.com/devblok/arena/render"

// State is what the main loop drives.
type State interface {

	// Update is called once per frame to update the game state.
	// A state it changes to is updated again in the same frame.
	Update(sys *System, deltaMs uint32) UpdateResult

	// Render renders the current frame.
	Render(f *render.Frame, deltaMs uint32) error

	// OnQuit is called when the game is about to quit.
	OnQuit(sys *System)
}

type action int

const (
	proceed action = iota
	changeState
	quit
	fail
)

// UpdateResult tells the main loop how to go on.
type UpdateResult struct {
	action action
	state  State
	err    error
}

// Results without arguments
var (
	Continue = UpdateResult{action: proceed}
	Quit     = UpdateResult{action: quit}
)

// ChangeState switches the main loop to state.
func ChangeState(state State) UpdateResult {
	return UpdateResult{action: changeState, state: state}
}

// Fail stops the main loop with err.
func Fail(err error) UpdateResult {
	return UpdateResult{action: fail, err: err}
}
