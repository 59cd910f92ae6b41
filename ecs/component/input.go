package component

// Input stores per-frame input state written by the host loop.
type Input struct {
	Forward bool
	Back    bool
	Left    bool
	Right   bool
	LookDX  float32
	LookDY  float32
}

var InputComponent = NewComponent[Input]()
