package export

import (
	"encoding/json"

	"github.com/stepcap/stepcap/internal/session"
)

// JSONRenderer renders the session document as indented JSON. Lossless:
// annotations and crops stay vector-side, undo stacks are preserved.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(sess *session.Session) ([]byte, error) {
	return json.MarshalIndent(sess, "", "  ")
}

func (r *JSONRenderer) Ext() string { return "json" }
