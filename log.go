package git

import (
	"fmt"
	"io"
	"strings"

	"github.com/bokuyemskyy/mgit/ginternals"
	"github.com/bokuyemskyy/mgit/ginternals/object"
	"github.com/bokuyemskyy/mgit/githash"
	"golang.org/x/xerrors"
)

// commitDateLayout is the format git itself uses for the commit header
// line: "Wed Jan 02 15:04:05 2006 -0700"
const commitDateLayout = "Mon Jan 02 15:04:05 2006 -0700"

// Log walks the commit graph depth-first starting at start (HEAD if
// empty), writing each commit before its parents and de-duplicating by
// oid, and writes one entry per commit to w: a plain "commit <oid>"
// header line (no color codes), author and date, then the message
// indented by four spaces.
func (r *Repository) Log(w io.Writer, start string) error {
	if start == "" {
		start = ginternals.Head
	}
	oid, err := r.Find(start, object.TypeCommit, true)
	if err != nil {
		return xerrors.Errorf("could not resolve %s: %w", start, err)
	}

	seen := map[githash.Oid]struct{}{}
	return r.logWalk(w, oid, seen)
}

func (r *Repository) logWalk(w io.Writer, oid githash.Oid, seen map[githash.Oid]struct{}) error {
	if _, ok := seen[oid]; ok {
		return nil
	}
	seen[oid] = struct{}{}

	o, err := r.backend.Object(oid)
	if err != nil {
		return xerrors.Errorf("could not read commit %s: %w", oid.String(), err)
	}
	commit, err := o.AsCommit()
	if err != nil {
		return err
	}

	if err := writeLogEntry(w, oid, commit); err != nil {
		return err
	}

	for _, parent := range commit.ParentIDs() {
		if err := r.logWalk(w, parent, seen); err != nil {
			return err
		}
	}
	return nil
}

func writeLogEntry(w io.Writer, oid githash.Oid, commit *object.Commit) error {
	author := commit.Author()
	msg := strings.TrimRight(commit.Message(), "\n")
	indented := indentLines(msg, "    ")

	_, err := fmt.Fprintf(w, "commit %s\nAuthor: %s <%s>\nDate:   %s\n\n%s\n\n",
		oid.String(), author.Name, author.Email, author.Time.Format(commitDateLayout), indented)
	return err
}

func indentLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
