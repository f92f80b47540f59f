package mutate

import (
	"fmt"

	"storyline-cli/internal/model"
)

// WrongTypeError is returned when a payload operation targets a node of the wrong level,
// e.g. setting a status on a scene.
type WrongTypeError struct {
	ID   string
	Want model.NodeType
	Got  model.NodeType
}

func (e WrongTypeError) Error() string {
	return fmt.Sprintf("%s is a %s; expected a %s", e.ID, e.Got, e.Want)
}
