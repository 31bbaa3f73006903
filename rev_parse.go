package git

import (
	"github.com/bokuyemskyy/mgit/ginternals/object"
	"github.com/bokuyemskyy/mgit/githash"
)

// RevParse resolves name to a single Oid, peeling to typ when given
// (pass 0 to skip peeling, matching rev-parse without --type)
func (r *Repository) RevParse(name string, typ object.Type) (githash.Oid, error) {
	return r.Find(name, typ, true)
}
