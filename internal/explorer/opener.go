package explorer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilupskalvis/vimlantis/internal/models"
)

// Opener asks the server to open a file in the editor.
// *client.HTTPClient implements it.
type Opener interface {
	Open(ctx context.Context, node models.TreeNode) (*models.OpenResponse, error)
}

// ErrNoOpener is reported when a file is activated in a session that has
// no Opener.
var ErrNoOpener = errors.New("no opener configured")

// Notification is a transient message shown to the user.
type Notification struct {
	Message string
	Editor  string // editor reported by the server, "" when none ran
	Err     error
	Expires time.Time
}

type openResult struct {
	node   models.TreeNode
	editor string
	err    error
}

// resultBuffer bounds how many finished opens can wait for the next tick.
const resultBuffer = 16

// openFile requests the open in the background. The result is picked up by
// the next Tick; nothing else waits for it.
func (s *Session) openFile(node models.TreeNode) {
	if s.opener == nil {
		s.notify(openResult{node: node, err: ErrNoOpener}, s.now())
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		resp, err := s.opener.Open(context.Background(), node)
		res := openResult{node: node, err: err}
		if err == nil && resp != nil {
			res.editor = resp.Editor
		}
		select {
		case s.results <- res:
		default:
			s.logger.Warn("dropping open result", "path", node.Path)
		}
	}()
}

func (s *Session) drainResults(now time.Time) {
	for {
		select {
		case res := <-s.results:
			s.notify(res, now)
		default:
			return
		}
	}
}

func (s *Session) notify(res openResult, now time.Time) {
	n := Notification{Err: res.err, Expires: now.Add(s.notifyFor)}
	if res.err != nil {
		n.Message = fmt.Sprintf("Failed to open: %s", res.node.Name)
		s.logger.Error("failed to open file", "path", res.node.Path, "error", res.err)
	} else {
		n.Message = fmt.Sprintf("Opened: %s", res.node.Name)
		n.Editor = res.editor
		s.logger.Info("opened file", "path", res.node.Path, "editor", res.editor)
	}
	s.notification = &n
}
