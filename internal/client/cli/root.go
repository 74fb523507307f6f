package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/bookauth/internal/client/models"
)

func (a *App) getStatus() string {
	st := a.ctl.State()
	s := st.Status.String()
	if st.IsAuthenticated() {
		s = st.User.Name
	}
	return fmt.Sprintf("(%s %s)", s, a.currentRoute())
}

func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to the book client (type 'help' for commands)")

	switch st := a.ctl.State(); st.Status {
	case models.StatusAuthenticated:
		fmt.Fprintf(a.out, "Signed in as %s <%s>\n", st.User.Name, st.User.Email)
	case models.StatusError:
		fmt.Fprintf(a.out, "Session could not be restored: %s\n", st.Reason)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
