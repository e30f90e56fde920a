package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/photogallery/internal/client/api"
	"github.com/dmitrijs2005/photogallery/internal/client/config"
	"github.com/dmitrijs2005/photogallery/internal/client/localdb"
	"github.com/dmitrijs2005/photogallery/internal/client/repositories/exports"
	"github.com/dmitrijs2005/photogallery/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/photogallery/internal/compositor"
	"github.com/dmitrijs2005/photogallery/internal/editor"
	"github.com/dmitrijs2005/photogallery/internal/logging"
	"github.com/dmitrijs2005/photogallery/internal/server/models"
)

// WatermarkText is stamped on local exports.
const WatermarkText = "PhotoGallery"

var (
	errNotLoggedIn = errors.New("not logged in (use 'login')")
	errNoImage     = errors.New("no image open (use 'open <id>')")
	errNoSelection = errors.New("no overlay selected (use 'select <n>' or 'add')")
)

// galleryAPI is the part of *api.Client the commands use.
type galleryAPI interface {
	Login(ctx context.Context, email, password string) (*api.Session, error)
	Logout(ctx context.Context) error
	Validate(ctx context.Context) (bool, error)
	List(ctx context.Context, q api.ListQuery) ([]models.ImageView, error)
	Get(ctx context.Context, id string) (*models.ImageView, error)
	Fetch(ctx context.Context, path string) ([]byte, error)
	Upload(ctx context.Context, files []api.File) ([]models.ImageView, error)
	Delete(ctx context.Context, id string) error
	Process(ctx context.Context, id string, pr api.ProcessRequest) (*api.Processed, error)
	SetToken(token string)
	Token() string
}

// editSession is one open image and its overlay editor.
type editSession struct {
	image   models.ImageView
	source  []byte
	display compositor.Display
	editor  *editor.Editor
}

type App struct {
	config  *config.Config
	api     galleryAPI
	meta    metadata.Repository
	exports exports.Repository
	logger  logging.Logger
	reader  *bufio.Reader
	out     io.Writer
	session *editSession
	closeFn func() error
}

// NewApp opens the local state file and the API client described by c.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	repos, err := localdb.InitDatabase(ctx, c.DataFile)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	client, err := api.New(c.ServerURL, c.RequestTimeout)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	a := newApp(c, client, repos.Metadata, repos.Exports, logger, os.Stdin, os.Stdout)
	a.closeFn = repos.Close
	return a, nil
}

func newApp(c *config.Config, client galleryAPI, meta metadata.Repository, ex exports.Repository, logger logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		config:  c,
		api:     client,
		meta:    meta,
		exports: ex,
		logger:  logger,
		reader:  bufio.NewReader(in),
		out:     out,
	}
}

// Run restores a saved session and blocks in the REPL until the user exits
// or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	a.restoreSession(ctx)
	a.printf("Welcome to PhotoGallery (%s). Type 'help' for commands.\n", a.config.ServerURL)
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
	return ctx.Err()
}

// Exec restores a saved session and runs a single command non-interactively.
func (a *App) Exec(ctx context.Context, cmd string, args ...string) error {
	defer a.Close()

	a.restoreSession(ctx)
	return dispatch(ctx, a, cmd, args)
}

func (a *App) Close() error {
	if a.closeFn == nil {
		return nil
	}
	fn := a.closeFn
	a.closeFn = nil
	return fn()
}

func (a *App) isLoggedIn() bool {
	return a.api.Token() != ""
}

func (a *App) getStatus() string {
	s := "guest"
	if a.isLoggedIn() {
		s = "admin"
	}
	if a.session != nil {
		s += " " + shortID(a.session.image.ID)
		if a.session.editor.CanUndo() {
			s += "*"
		}
	}
	return s
}

func (a *App) requireLogin() error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	return nil
}

func (a *App) requireSession() (*editSession, error) {
	if a.session == nil {
		return nil, errNoImage
	}
	return a.session, nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
