package headersession

import (
	"context"

	"github.com/shopkit/sessiongate/pkg/sessionuri"
)

// startOrResume obtains the session referenced by id under the
// type-dependent create policy: anonymous sessions may be created
// transparently under the client-assigned id, authenticated sessions
// must pre-exist. The asymmetry keeps authenticated identifiers from
// being forged into valid sessions.
func startOrResume(ctx context.Context, store Store, id string, typ sessionuri.Type) (*Session, error) {
	return store.Get(ctx, id, typ == sessionuri.Anonymous)
}
