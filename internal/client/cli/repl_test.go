package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	args     [][]string
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) status() string   { return "test" }

func (f *fakeExec) Signup(ctx context.Context) error { return f.record("signup", nil) }
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login", nil)
}
func (f *fakeExec) Verify(ctx context.Context) error { return f.record("verify", nil) }
func (f *fakeExec) Resend(ctx context.Context) error { return f.record("resend", nil) }
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout", nil)
}
func (f *fakeExec) Me(ctx context.Context) error { return f.record("me", nil) }
func (f *fakeExec) List(ctx context.Context, args []string) error {
	return f.record("list", args)
}
func (f *fakeExec) Show(ctx context.Context, args []string) error {
	return f.record("show", args)
}
func (f *fakeExec) Chunks(ctx context.Context, args []string) error {
	return f.record("chunks", args)
}
func (f *fakeExec) Delete(ctx context.Context, args []string) error {
	return f.record("delete", args)
}
func (f *fakeExec) Reprocess(ctx context.Context, args []string) error {
	return f.record("reprocess", args)
}
func (f *fakeExec) Export(ctx context.Context, args []string) error {
	return f.record("export", args)
}
func (f *fakeExec) Formats(ctx context.Context) error { return f.record("formats", nil) }
func (f *fakeExec) Pick(args []string) error          { return f.record("pick", args) }
func (f *fakeExec) Upload(ctx context.Context, args []string) error {
	return f.record("upload", args)
}
func (f *fakeExec) Watch(ctx context.Context, args []string) error {
	return f.record("watch", args)
}
func (f *fakeExec) Preview(args []string) error          { return f.record("preview", args) }
func (f *fakeExec) KeysCreate(ctx context.Context) error { return f.record("keys create", nil) }
func (f *fakeExec) KeysList(ctx context.Context) error   { return f.record("keys list", nil) }
func (f *fakeExec) KeysRevoke(ctx context.Context, args []string) error {
	return f.record("keys revoke", args)
}
func (f *fakeExec) KeysDelete(ctx context.Context, args []string) error {
	return f.record("keys delete", args)
}
func (f *fakeExec) Settings(args []string) error { return f.record("settings", args) }

func silencePrintln(t *testing.T) {
	t.Helper()
	orig := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = orig })
}

func runScript(t *testing.T, exec *fakeExec, lines ...string) {
	t.Helper()
	silencePrintln(t)
	sc := bufio.NewScanner(strings.NewReader(strings.Join(lines, "\n")))
	runREPL(context.Background(), exec, sc)
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	exec := &fakeExec{}

	runScript(t, exec,
		"help",
		"login",
		"pick /tmp/a.txt",
		"upload",
		"list completed",
		"show d1",
		"chunks d1",
		"export d1 out.json",
		"watch d1",
		"formats",
		"me",
		"logout",
		"exit",
	)

	assert.Equal(t, []string{
		"login", "pick", "upload", "list", "show", "chunks",
		"export", "watch", "formats", "me", "logout",
	}, exec.calls)
	assert.Equal(t, []string{"/tmp/a.txt"}, exec.args[1])
	assert.Equal(t, []string{"completed"}, exec.args[3])
	assert.Equal(t, []string{"d1", "out.json"}, exec.args[6])
}

func TestRunREPL_KeysSubcommands(t *testing.T) {
	exec := &fakeExec{loggedIn: true}

	runScript(t, exec,
		"keys",
		"keys create",
		"keys revoke k1",
		"keys delete k1",
		"keys frobnicate",
		"exit",
	)

	assert.Equal(t, []string{"keys list", "keys create", "keys revoke", "keys delete"}, exec.calls)
	assert.Equal(t, []string{"k1"}, exec.args[2])
}

func TestRunREPL_UnknownAndEmptyLines(t *testing.T) {
	exec := &fakeExec{}

	runScript(t, exec,
		"",
		"   ",
		"frobnicate",
		"quit",
	)

	assert.Empty(t, exec.calls)
}

func TestRunREPL_EOFEndsLoop(t *testing.T) {
	exec := &fakeExec{}
	runScript(t, exec, "list")
	assert.Equal(t, []string{"list"}, exec.calls)
}
