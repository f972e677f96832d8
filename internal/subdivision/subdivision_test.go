package subdivision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kbouchard/cineorg/internal/model"
)

func TestParseParentRangeBareLetter(t *testing.T) {
	start, end := ParseParentRange("C")
	assert.Equal(t, "CA", start)
	assert.Equal(t, "CZ", end)
}

func TestParseParentRangeRange(t *testing.T) {
	start, end := ParseParentRange("E-F")
	assert.Equal(t, "EA", start)
	assert.Equal(t, "FZ", end)
}

func TestParseParentRangeGenre(t *testing.T) {
	start, end := ParseParentRange("Action")
	assert.Equal(t, "AA", start)
	assert.Equal(t, "ZZ", end)
}

func TestIsRangeDir(t *testing.T) {
	assert.True(t, IsRangeDir("C"))
	assert.True(t, IsRangeDir("E-F"))
	assert.False(t, IsRangeDir("Action"))
}

func TestCalculateSplitsOverfullDir(t *testing.T) {
	entries := []string{
		"Alice in Wonderland", "Apocalypse Now", "Batman Begins", "Blade Runner",
		"Casablanca", "Citizen Kane", "Dracula", "Dune",
	}
	plan := Calculate("/storage/Films/Divers/A-D", entries, 4, nil)
	assert.Equal(t, 8, plan.CurrentCount)
	assert.NotEmpty(t, plan.Ranges)
	assert.NotEmpty(t, plan.ItemsToMove)
	assert.Empty(t, plan.OutOfRangeItems)

	total := 0
	for _, r := range plan.Ranges {
		assert.NotEmpty(t, r.Label())
		total++
	}
	assert.GreaterOrEqual(t, total, 2)
}

func TestCalculateOutOfRangeItems(t *testing.T) {
	entries := []string{"Zorro"}
	plan := Calculate("/storage/Films/Divers/A-D", entries, 4, func(dir string) []string {
		return []string{"A-D", "E-Z"}
	})
	assert.Len(t, plan.OutOfRangeItems, 1)
}

func TestRefineOutOfRangeDestination(t *testing.T) {
	plans := []model.SubdivisionPlan{
		{
			ParentDir: "/storage/Films/Divers/E-Z",
			Ranges: []model.KeyRange{
				{Start: "EA", End: "MZ"},
				{Start: "NA", End: "ZZ"},
			},
		},
	}
	dest := RefineOutOfRangeDestination("/storage/Films/Divers/E-Z/Zorro", plans)
	assert.Equal(t, "/storage/Films/Divers/E-Z/Na-Zz/Zorro", dest)
}
