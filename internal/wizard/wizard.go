// Package wizard computes the progress bar and step states for multi-page
// forms.
package wizard

type State string

const (
	StateCompleted State = "completed"
	StateActive    State = "active"
	StateInactive  State = "inactive"
)

type Step struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

type StepView struct {
	Step
	Index int   `json:"index"`
	State State `json:"state"`
}

type View struct {
	Steps    []StepView `json:"steps"`
	Current  int        `json:"current"`
	Progress int        `json:"progress"`
}

// New clamps current into range and derives each step's state.
func New(steps []Step, current int) View {
	n := len(steps)
	if n == 0 {
		return View{Steps: []StepView{}}
	}
	if current < 0 {
		current = 0
	}
	if current > n-1 {
		current = n - 1
	}

	v := View{Steps: make([]StepView, n), Current: current, Progress: 100}
	if n > 1 {
		v.Progress = current * 100 / (n - 1)
	}
	for i, s := range steps {
		state := StateInactive
		switch {
		case i < current:
			state = StateCompleted
		case i == current:
			state = StateActive
		}
		v.Steps[i] = StepView{Step: s, Index: i, State: state}
	}
	return v
}

func (v View) steps() []Step {
	out := make([]Step, len(v.Steps))
	for i, s := range v.Steps {
		out[i] = s.Step
	}
	return out
}

func (v View) Next() View { return New(v.steps(), v.Current+1) }
func (v View) Prev() View { return New(v.steps(), v.Current-1) }

func (v View) IsFirst() bool { return v.Current == 0 }
func (v View) IsLast() bool  { return len(v.Steps) == 0 || v.Current == len(v.Steps)-1 }

// ActiveStep returns the current step, or false for an empty wizard.
func (v View) ActiveStep() (Step, bool) {
	if len(v.Steps) == 0 {
		return Step{}, false
	}
	return v.Steps[v.Current].Step, true
}
