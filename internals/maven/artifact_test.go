package maven

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/minepkg/mclaunch/internals/merrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		coord string
		want  Artifact
	}{
		{
			"simple",
			"net.sf.jopt-simple:jopt-simple:5.0.4",
			Artifact{Group: "net.sf.jopt-simple", ID: "jopt-simple", Version: "5.0.4", Packaging: "jar"},
		},
		{
			"classifier",
			"org.lwjgl:lwjgl:3.3.3:natives-windows",
			Artifact{Group: "org.lwjgl", ID: "lwjgl", Version: "3.3.3", Classifier: "natives-windows", Packaging: "jar"},
		},
		{
			"packaging",
			"com.example:lib:1.0@pom",
			Artifact{Group: "com.example", ID: "lib", Version: "1.0", Packaging: "pom"},
		},
		{
			"classifier and packaging",
			"de.oceanlabs.mcp:mcp_config:1.20.1-20230612.114412@zip",
			Artifact{Group: "de.oceanlabs.mcp", ID: "mcp_config", Version: "1.20.1-20230612.114412", Packaging: "zip"},
		},
		{
			"classifier with zip",
			"net.minecraft:client:1.20.1-20230612.114412:mappings@txt",
			Artifact{Group: "net.minecraft", ID: "client", Version: "1.20.1-20230612.114412", Classifier: "mappings", Packaging: "txt"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.coord)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, coord := range []string{"", "a", "a:b", "a:b:c:d:e", "a::c", "a:b:c@", "::"} {
		t.Run(fmt.Sprintf("%q", coord), func(t *testing.T) {
			_, err := Parse(coord)
			require.Error(t, err)
			assert.Equal(t, merrors.KindInvalidCoordinate, merrors.KindOf(err))
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	coords := []string{
		"net.sf.jopt-simple:jopt-simple:5.0.4",
		"org.lwjgl:lwjgl:3.3.3:natives-windows",
		"com.example:lib:1.0@pom",
		"net.minecraft:client:1.20.1:mappings@txt",
	}
	for _, coord := range coords {
		a, err := Parse(coord)
		require.NoError(t, err)
		assert.Equal(t, coord, a.String())

		again, err := Parse(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, again)
	}

	// explicit default packaging is elided
	a := MustParse("g:a:1@jar")
	assert.Equal(t, "g:a:1", a.String())
	assert.Equal(t, MustParse("g:a:1"), a)
}

func TestURLAndLocalPath(t *testing.T) {
	a := MustParse("net.sf.jopt-simple:jopt-simple:5.0.4")
	assert.Equal(t,
		"https://libraries.minecraft.net/net/sf/jopt-simple/jopt-simple/5.0.4/jopt-simple-5.0.4.jar",
		a.URL(MojangLibraries),
	)
	// trailing slashes do not matter
	assert.Equal(t, a.URL(MojangLibraries), a.URL(MojangLibraries+"/"))

	native := MustParse("org.lwjgl:lwjgl:3.3.3:natives-windows")
	assert.Equal(t,
		filepath.FromSlash("org/lwjgl/lwjgl/3.3.3/lwjgl-3.3.3-natives-windows.jar"),
		native.LocalPath(),
	)
	// pure functions
	assert.Equal(t, native.LocalPath(), native.LocalPath())
	assert.Equal(t, native.URL(ForgeMaven), native.URL(ForgeMaven))
}

func TestWithPackaging(t *testing.T) {
	a := MustParse("org.ow2.asm:asm:9.7")
	pom := a.WithPackaging("pom")

	assert.True(t, pom.IsPom())
	assert.False(t, a.IsPom())
	assert.Equal(t, "asm-9.7.pom", pom.FileName())
	assert.Equal(t, "org.ow2.asm:asm:9.7@pom", pom.String())
}

func ExampleArtifact_URL() {
	a := MustParse("net.fabricmc:fabric-loader:0.16.10")
	fmt.Println(a.URL(FabricMaven))
	// Output: https://maven.fabricmc.net/net/fabricmc/fabric-loader/0.16.10/fabric-loader-0.16.10.jar
}
