package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func step(id, typ string, needs ...string) StepSpec {
	return StepSpec{ID: id, Type: typ, Needs: needs}
}

func TestBuildGraph_DuplicateID(t *testing.T) {
	_, err := BuildGraph([]StepSpec{
		step("build", "build"),
		step("build", "version"),
	}, GraphOptions{})
	assert.ErrorIs(t, err, ErrDuplicateStepID)
}

func TestBuildGraph_UnknownDependency(t *testing.T) {
	_, err := BuildGraph([]StepSpec{
		step("tag", "git.tag", "commit"),
	}, GraphOptions{})
	assert.ErrorIs(t, err, ErrUnknownDependency)
}

func TestBuildGraph_Cycle(t *testing.T) {
	_, err := BuildGraph([]StepSpec{
		step("a", "build", "b"),
		step("b", "build", "a"),
	}, GraphOptions{})
	assert.ErrorIs(t, err, ErrDependencyCycle)
}

func TestBuildGraph_SelfCycle(t *testing.T) {
	_, err := BuildGraph([]StepSpec{
		step("a", "build", "a"),
	}, GraphOptions{})
	assert.ErrorIs(t, err, ErrDependencyCycle)
}

func TestBuildGraph_AutoInsertCommit(t *testing.T) {
	g, err := BuildGraph([]StepSpec{
		step("tag", "git.tag"),
	}, GraphOptions{CommitMessage: "chore(release): {{release.version}}"})
	require.NoError(t, err)

	// Exactly one commit step inserted, before the tag.
	require.Len(t, g.Steps, 2)
	assert.Equal(t, "commit", g.Steps[0].ID)
	assert.Equal(t, "git.commit", g.Steps[0].Type)
	assert.Equal(t, "chore(release): {{release.version}}", g.Steps[0].Config["message"])

	tag, ok := g.Step("tag")
	require.True(t, ok)
	assert.Equal(t, []string{"commit"}, tag.Needs)

	assert.Equal(t, [][]string{{"commit"}, {"tag"}}, g.Layers)
}

func TestBuildGraph_NoAutoInsertWhenCommitExists(t *testing.T) {
	g, err := BuildGraph([]StepSpec{
		step("save", "git.commit"),
		step("tag", "git.tag", "save"),
	}, GraphOptions{})
	require.NoError(t, err)
	assert.Len(t, g.Steps, 2)
}

func TestBuildGraph_NoAutoInsertWithoutTag(t *testing.T) {
	g, err := BuildGraph([]StepSpec{
		step("build", "build"),
	}, GraphOptions{})
	require.NoError(t, err)
	assert.Len(t, g.Steps, 1)
}

func TestBuildGraph_AutoInsertIDCollision(t *testing.T) {
	g, err := BuildGraph([]StepSpec{
		step("commit", "build"),
		step("tag", "git.tag"),
	}, GraphOptions{})
	require.NoError(t, err)

	tag, _ := g.Step("tag")
	require.Len(t, tag.Needs, 1)
	assert.Equal(t, "commit-2", tag.Needs[0])

	inserted, ok := g.Step("commit-2")
	require.True(t, ok)
	assert.Equal(t, "git.commit", inserted.Type)
}

func TestBuildGraph_AutoInsertCommitAfterVersion(t *testing.T) {
	g, err := BuildGraph([]StepSpec{
		step("version", "version"),
		step("notes", "changes"),
		step("tag", "git.tag", "version"),
	}, GraphOptions{})
	require.NoError(t, err)

	// The synthesized commit runs only after the worktree edits, so the
	// tag never captures an uncommitted version bump.
	commit, ok := g.Step("commit")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"version", "notes"}, commit.Needs)
	assert.Equal(t, [][]string{{"version", "notes"}, {"commit"}, {"tag"}}, g.Layers)
}

func TestBuildGraph_AutoInsertSkipsTagDependentMutators(t *testing.T) {
	// A version step downstream of the tag cannot gate the synthesized
	// commit without closing a cycle; it is left out of the commit's edges.
	g, err := BuildGraph([]StepSpec{
		step("tag", "git.tag"),
		step("version", "version", "tag"),
	}, GraphOptions{})
	require.NoError(t, err)

	commit, ok := g.Step("commit")
	require.True(t, ok)
	assert.Empty(t, commit.Needs)
	assert.Equal(t, [][]string{{"commit"}, {"tag"}, {"version"}}, g.Layers)
}

func TestBuildGraph_AllTagsGainCommitEdge(t *testing.T) {
	g, err := BuildGraph([]StepSpec{
		step("tag-a", "git.tag"),
		step("tag-b", "git.tag"),
	}, GraphOptions{})
	require.NoError(t, err)

	for _, id := range []string{"tag-a", "tag-b"} {
		s, _ := g.Step(id)
		assert.Contains(t, s.Needs, "commit", "step %s", id)
	}
}

func TestBuildGraph_Layering(t *testing.T) {
	g, err := BuildGraph([]StepSpec{
		step("build", "build"),
		step("version", "version"),
		step("commit", "git.commit", "version"),
		step("tag", "git.tag", "commit"),
		step("push", "git.push", "tag"),
	}, GraphOptions{})
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"build", "version"},
		{"commit"},
		{"tag"},
		{"push"},
	}, g.Layers)
}

func TestBuildGraph_LayeringPreservesDeclarationOrder(t *testing.T) {
	g, err := BuildGraph([]StepSpec{
		step("z", "build"),
		step("a", "build"),
		step("m", "build"),
	}, GraphOptions{})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"z", "a", "m"}}, g.Layers)
}

func TestBuildGraph_DiamondLayering(t *testing.T) {
	g, err := BuildGraph([]StepSpec{
		step("root", "build"),
		step("left", "build", "root"),
		step("right", "build", "root"),
		step("join", "build", "left", "right"),
	}, GraphOptions{})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"root"}, {"left", "right"}, {"join"}}, g.Layers)
}

func TestBuildGraph_MissingID(t *testing.T) {
	_, err := BuildGraph([]StepSpec{{Type: "build"}}, GraphOptions{})
	assert.Error(t, err)
}
