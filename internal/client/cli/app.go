package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/bookauth/internal/client/config"
	"github.com/dmitrijs2005/bookauth/internal/client/controller"
	"github.com/dmitrijs2005/bookauth/internal/client/gateway"
	"github.com/dmitrijs2005/bookauth/internal/client/models"
	"github.com/dmitrijs2005/bookauth/internal/client/repositories"
	"github.com/dmitrijs2005/bookauth/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/bookauth/internal/client/services"
	"github.com/dmitrijs2005/bookauth/internal/client/session"
	"github.com/dmitrijs2005/bookauth/internal/logging"
)

// sessionController is the part of *controller.Controller the commands use.
type sessionController interface {
	State() models.SessionState
	Login(ctx context.Context, in models.LoginInput) error
	Register(ctx context.Context, in models.RegisterInput) error
	Logout(ctx context.Context) string
	UpdateProfile(ctx context.Context, p models.ProfileUpdate) (models.User, error)
	Refresh(ctx context.Context) (models.User, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	VerifyInBackground(ctx context.Context)
	Wait()
}

type App struct {
	config *config.Config
	ctl    sessionController
	log    logging.Logger
	db     *sql.DB
	reader *bufio.Reader
	out    io.Writer

	mu    sync.Mutex
	route string
}

// NewApp wires storage, the session store, the gateway, the auth service
// and the controller. The session is restored from storage before it
// returns, so the first prompt already reflects it.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(c.LogLevel, c.LogFormat, os.Stderr)

	db, err := repositories.InitDatabase(ctx, c.DatabasePath, log)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	creds := credentials.NewSQLiteRepository(db)
	store := session.NewStore(creds, log)
	if err := store.Hydrate(ctx); err != nil {
		logging.LogError(ctx, log, "could not restore session", err)
	}

	gw := gateway.New(c.BaseURL, creds, gateway.WithTimeout(c.RequestTimeout), gateway.WithLogger(log))
	auth := services.NewAuthService(gw, log, services.WithProfilePath(c.ProfilePath))

	app := &App{
		config: c,
		log:    log,
		db:     db,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		route:  "/",
	}
	ctl := controller.New(store, auth,
		controller.WithNavigator(app),
		controller.WithLogger(log),
		controller.WithVerifyAttempts(c.VerifyAttempts),
	)
	gw.OnUnauthorized(ctl.HandleUnauthorized)
	app.ctl = ctl

	return app, nil
}

// Run starts background verification when configured, then blocks in the
// REPL until the user leaves.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		a.ctl.Wait()
		if a.db != nil {
			if err := a.db.Close(); err != nil {
				a.log.Warn(ctx, "closing database", "error", err)
			}
		}
	}()

	if a.config.VerifyOnStart && a.isLoggedIn() {
		a.ctl.VerifyInBackground(ctx)
	}
	a.Root(ctx)
}

// Navigate implements controller.Navigator for the terminal: it remembers
// the route for the prompt and tells the user.
func (a *App) Navigate(route string) {
	a.mu.Lock()
	changed := a.route != route
	a.route = route
	a.mu.Unlock()

	if changed {
		fmt.Fprintf(a.out, "-> %s\n", route)
	}
}

func (a *App) currentRoute() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route
}

func (a *App) isLoggedIn() bool {
	return a.ctl.State().IsAuthenticated()
}
