package copr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ralt/coprctl/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fedora = models.Platform{Family: models.FamilyFedora, Major: 40}
	el7    = models.Platform{Family: models.FamilyRHEL, Major: 7}
	el9    = models.Platform{Family: models.FamilyRHEL, Major: 9}
)

func newTestReconciler(t *testing.T) (*Reconciler, string) {
	t.Helper()
	dir := t.TempDir()
	return NewReconciler(models.Settings{ReposDir: dir}), dir
}

func TestReconcileEnableIsIdempotent(t *testing.T) {
	r, dir := newTestReconciler(t)

	changed, err := r.Reconcile("copart/restic", models.StateEnabled, fedora)
	require.NoError(t, err)
	assert.True(t, changed)

	path := filepath.Join(dir, "_copr:copr.fedorainfracloud.org:copart:restic.repo")
	first, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(first), "[copr:copr.fedorainfracloud.org:copart:restic]")
	assert.Contains(t, string(first), "enabled=1")

	changed, err = r.Reconcile("copart/restic", models.StateEnabled, fedora)
	require.NoError(t, err)
	assert.False(t, changed, "second enable must be a no-op")

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReconcileDisableModern(t *testing.T) {
	for _, p := range []models.Platform{fedora, el9} {
		t.Run(p.String(), func(t *testing.T) {
			r, dir := newTestReconciler(t)

			changed, err := r.Reconcile("copart/restic", models.StateDisabled, p)
			require.NoError(t, err)
			assert.True(t, changed)

			data, err := os.ReadFile(filepath.Join(dir, "_copr:copr.fedorainfracloud.org:copart:restic.repo"))
			require.NoError(t, err)
			assert.Contains(t, string(data), "[copr:copr.fedorainfracloud.org:copart:restic]")
			assert.Contains(t, string(data), "enabled=0")
			assert.NotContains(t, string(data), "enabled=1")

			changed, err = r.Reconcile("copart/restic", models.StateDisabled, p)
			require.NoError(t, err)
			assert.False(t, changed)
		})
	}
}

func TestReconcileDisableLegacyRemovesFile(t *testing.T) {
	r, dir := newTestReconciler(t)
	path := filepath.Join(dir, "_copr_copart-restic.repo")

	changed, err := r.Reconcile("copart/restic", models.StateEnabled, el7)
	require.NoError(t, err)
	assert.True(t, changed)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[copr:copr.fedorainfracloud.org:copart:restic]")
	assert.Contains(t, string(data), "enabled=1")
	assert.Contains(t, string(data), "epel-$releasever-$basearch")

	changed, err = r.Reconcile("copart/restic", models.StateDisabled, el7)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NoFileExists(t, path)

	changed, err = r.Reconcile("copart/restic", models.StateDisabled, el7)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NoFileExists(t, path)
}

func TestReconcileRemoveAfterEnable(t *testing.T) {
	for _, p := range []models.Platform{fedora, el7} {
		t.Run(p.String(), func(t *testing.T) {
			r, _ := newTestReconciler(t)

			_, err := r.Reconcile("copart/restic", models.StateEnabled, p)
			require.NoError(t, err)
			def, err := r.Definition("copart/restic", p)
			require.NoError(t, err)
			assert.FileExists(t, def.FilePath)

			changed, err := r.Reconcile("copart/restic", models.StateRemoved, p)
			require.NoError(t, err)
			assert.True(t, changed)
			assert.NoFileExists(t, def.FilePath)

			changed, err = r.Reconcile("copart/restic", models.StateRemoved, p)
			require.NoError(t, err)
			assert.False(t, changed)
		})
	}
}

func TestReconcileRoundTripLeavesNoResidue(t *testing.T) {
	fresh, _ := newTestReconciler(t)
	_, err := fresh.Reconcile("copart/restic", models.StateEnabled, fedora)
	require.NoError(t, err)
	freshDef, err := fresh.Definition("copart/restic", fedora)
	require.NoError(t, err)
	want, err := os.ReadFile(freshDef.FilePath)
	require.NoError(t, err)

	r, _ := newTestReconciler(t)
	for _, s := range []models.State{
		models.StateEnabled,
		models.StateDisabled,
		models.StateRemoved,
		models.StateEnabled,
	} {
		changed, err := r.Reconcile("copart/restic", s, fedora)
		require.NoError(t, err)
		assert.True(t, changed, "transition to %s", s)
	}

	def, err := r.Definition("copart/restic", fedora)
	require.NoError(t, err)
	got, err := os.ReadFile(def.FilePath)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}

func TestReconcileRepairsDrift(t *testing.T) {
	r, _ := newTestReconciler(t)
	def, err := r.Definition("copart/restic", fedora)
	require.NoError(t, err)

	// Section header present but no enabled key
	require.NoError(t, os.WriteFile(def.FilePath, []byte("[copr:copr.fedorainfracloud.org:copart:restic]\nname=x\n"), 0644))

	changed, err := r.Reconcile("copart/restic", models.StateEnabled, fedora)
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(def.FilePath)
	require.NoError(t, err)
	assert.Equal(t, string(def.Render(models.StateEnabled)), string(data))
}

func TestReconcileHandEditedEnabledIsKept(t *testing.T) {
	r, _ := newTestReconciler(t)
	def, err := r.Definition("copart/restic", fedora)
	require.NoError(t, err)

	content := "# managed elsewhere\n[copr:copr.fedorainfracloud.org:copart:restic]\nname=restic\nenabled=True\n"
	require.NoError(t, os.WriteFile(def.FilePath, []byte(content), 0644))

	changed, err := r.Reconcile("copart/restic", models.StateEnabled, fedora)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = r.Reconcile("copart/restic", models.StateDisabled, fedora)
	require.NoError(t, err)
	assert.True(t, changed)
	data, err := os.ReadFile(def.FilePath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "managed elsewhere")
}

func TestReconcileInvalidIdentifier(t *testing.T) {
	r, dir := newTestReconciler(t)

	for _, id := range []string{"", "restic", "copart/", "/restic", "a/b/c", "copart/res tic", "../etc/passwd"} {
		_, err := r.Reconcile(id, models.StateEnabled, fedora)
		require.Error(t, err, "id %q", id)
		assert.True(t, models.IsErrorType(err, models.ErrInvalidIdentifier), "id %q: %v", id, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReconcileUnsupportedPlatform(t *testing.T) {
	r, _ := newTestReconciler(t)

	_, err := r.Reconcile("copart/restic", models.StateEnabled, models.Platform{Family: "debian", Major: 12})
	require.Error(t, err)
	assert.True(t, models.IsErrorType(err, models.ErrUnsupportedPlatform))

	_, err = r.Reconcile("copart/restic", models.StateEnabled, models.Platform{Family: models.FamilyRHEL})
	assert.True(t, models.IsErrorType(err, models.ErrUnsupportedPlatform))
}

func TestReconcileUnwritableDirectory(t *testing.T) {
	// A regular file standing in for the directory fails even as root
	parent := t.TempDir()
	notDir := filepath.Join(parent, "yum.repos.d")
	require.NoError(t, os.WriteFile(notDir, nil, 0644))

	r := NewReconciler(models.Settings{ReposDir: notDir})
	_, err := r.Reconcile("copart/restic", models.StateEnabled, fedora)
	require.Error(t, err)
	assert.True(t, models.IsErrorType(err, models.ErrFileOp), "%v", err)
}

func TestReconcileRejectsUnknownDesiredState(t *testing.T) {
	r, _ := newTestReconciler(t)
	_, err := r.Reconcile("copart/restic", models.StateUnknown, fedora)
	require.Error(t, err)
	assert.True(t, models.IsErrorType(err, models.ErrInvalidConfig))
}

func TestEffective(t *testing.T) {
	assert.Equal(t, models.StateRemoved, Effective(models.StateDisabled, el7))
	assert.Equal(t, models.StateRemoved, Effective(models.StateDisabled, models.Platform{Family: models.FamilyRHEL, Major: 6}))
	assert.Equal(t, models.StateDisabled, Effective(models.StateDisabled, el9))
	assert.Equal(t, models.StateDisabled, Effective(models.StateDisabled, models.Platform{Family: models.FamilyFedora, Major: 7}))
	assert.Equal(t, models.StateEnabled, Effective(models.StateEnabled, el7))
}

func TestReconcileLegacyNameCollision(t *testing.T) {
	r, dir := newTestReconciler(t)
	path := filepath.Join(dir, "_copr_a-b-c.repo")

	changed, err := r.Reconcile("a-b/c", models.StateEnabled, el7)
	require.NoError(t, err)
	assert.True(t, changed)
	want, err := os.ReadFile(path)
	require.NoError(t, err)

	for round := 0; round < 2; round++ {
		changed, err = r.Reconcile("a/b-c", models.StateEnabled, el7)
		require.Error(t, err)
		assert.False(t, changed)
		assert.True(t, models.IsErrorType(err, models.ErrFileOp), "%v", err)
		assert.Contains(t, err.Error(), "a-b/c")

		_, err = r.Reconcile("a/b-c", models.StateRemoved, el7)
		assert.True(t, models.IsErrorType(err, models.ErrFileOp), "%v", err)

		changed, err = r.Reconcile("a-b/c", models.StateEnabled, el7)
		require.NoError(t, err)
		assert.False(t, changed, "round %d", round)
	}

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}

func TestReconcileRejectsHubOutsideReposDir(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "yum.repos.d")
	require.NoError(t, os.Mkdir(dir, 0755))

	for _, hub := range []string{"../evil", "a/b", `a\b`, ".", "x..y"} {
		r := NewReconciler(models.Settings{ReposDir: dir, Hub: hub})
		_, err := r.Reconcile("copart/restic", models.StateEnabled, fedora)
		require.Error(t, err, "hub %q", hub)
		assert.True(t, models.IsErrorType(err, models.ErrInvalidConfig), "hub %q: %v", hub, err)
	}

	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
