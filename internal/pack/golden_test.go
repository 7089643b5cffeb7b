package pack_test

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/ArmindoFlores/MineScript2/internal/pack"
)

// golden is a txtar archive holding the expected contents of a selection of
// files from a build of the fixture program below, the idiomatic x/tools way
// of keeping a multi-file expected-output fixture in one readable blob
// instead of one file per expectation.
const golden = `
-- testpack/data/testpack/functions/main.mcfunction --
scoreboard players set #MineScript _break_main 0
execute unless score #MineScript _break_main matches 1 run scoreboard players set #MineScript x+local 5
`

func TestPackagingMatchesGoldenFixture(t *testing.T) {
	result := compileOrFail(t, `void main() { int x = 5; }`)

	var buf bytes.Buffer
	_, err := pack.WriteZip(&buf, result.Output, projectFor("testpack"), "golden-build")
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	ar := txtar.Parse([]byte(golden))
	for _, want := range ar.Files {
		got := readZipFile(t, zr, want.Name)
		assert.Equal(t, string(want.Data), got)
	}
}
