package pagespec

import (
	"testing"

	"github.com/phanxgames/parallax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValueNumber(t *testing.T) {
	v := Number(12.5)
	assert.False(t, v.IsExpr())
	got, err := v.Eval(Env{})
	require.NoError(t, err)
	assert.Equal(t, 12.5, got)
	assert.Equal(t, "12.5", v.String())
}

func TestValueExpr(t *testing.T) {
	tests := []struct {
		name string
		src  string
		env  Env
		want float64
	}{
		{"data", "target.level * 4", Env{Target: map[string]float64{"level": 90}}, 360},
		{"index", "index * 40 + 10", Env{Index: 3}, 130},
		{"count", "count - index - 1", Env{Index: 1, Count: 5}, 3},
		{"ternary", "index % 2 == 0 ? 1 : -1", Env{Index: 3}, -1},
		{"math module", `import("math").floor(target.width / 3)`, Env{Target: map[string]float64{"width": 100}}, 33},
		{"string number", `"42"`, Env{}, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Expr(tt.src)
			require.NoError(t, err)
			assert.True(t, v.IsExpr())
			got, err := v.Eval(tt.env)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestValueExprReusable(t *testing.T) {
	v, err := Expr("index * 10")
	require.NoError(t, err)
	for i := range 3 {
		got, err := v.Eval(Env{Index: i})
		require.NoError(t, err)
		assert.Equal(t, float64(i*10), got)
	}
}

func TestValueExprErrors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := Expr("  ")
		require.Error(t, err)
	})
	t.Run("syntax", func(t *testing.T) {
		_, err := Expr("1 +")
		require.Error(t, err)
	})
	t.Run("unknown variable", func(t *testing.T) {
		_, err := Expr("level * 2")
		require.Error(t, err)
	})
	t.Run("missing data", func(t *testing.T) {
		v, err := Expr("target.level")
		require.NoError(t, err)
		_, err = v.Eval(Env{Target: map[string]float64{}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a finite number")
	})
	t.Run("not a number", func(t *testing.T) {
		v, err := Expr(`"wide"`)
		require.NoError(t, err)
		_, err = v.Eval(Env{})
		require.Error(t, err)
	})
}

func TestValueUnmarshal(t *testing.T) {
	var m map[string]Value
	require.NoError(t, yaml.Unmarshal([]byte(`{ x: 10, y: -2.5, width: "target.level * 2" }`), &m))

	assert.False(t, m["x"].IsExpr())
	assert.False(t, m["y"].IsExpr())
	assert.True(t, m["width"].IsExpr())

	got, err := m["width"].Eval(Env{Target: map[string]float64{"level": 21}})
	require.NoError(t, err)
	assert.Equal(t, 42.0, got)

	err = yaml.Unmarshal([]byte(`{ x: [1, 2] }`), &m)
	require.Error(t, err)
	err = yaml.Unmarshal([]byte(`{ x: "1 +" }`), &m)
	require.Error(t, err)
}

func TestScrubUnmarshal(t *testing.T) {
	tests := []struct {
		doc     string
		want    Scrub
		wantErr bool
	}{
		{"scrub: true", Scrub{Enabled: true}, false},
		{"scrub: false", Scrub{}, false},
		{"scrub: 1", Scrub{Enabled: true, Smoothing: 1}, false},
		{"scrub: 0.5", Scrub{Enabled: true, Smoothing: 0.5}, false},
		{"scrub: -1", Scrub{}, true},
		{"scrub: soon", Scrub{}, true},
		{"scrub: [1]", Scrub{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.doc, func(t *testing.T) {
			var out struct {
				Scrub Scrub `yaml:"scrub"`
			}
			err := yaml.Unmarshal([]byte(tt.doc), &out)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Scrub)
		})
	}
}

func TestColorUnmarshal(t *testing.T) {
	var out struct {
		A Color `yaml:"a"`
		B Color `yaml:"b"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("a: \"#ff0000\"\nb: \"#00000080\""), &out))
	assert.Equal(t, parallax.Color{R: 1, G: 0, B: 0, A: 1}, out.A.Color)
	assert.InDelta(t, 128.0/255, out.B.A, 1e-9)

	var bad struct {
		C Color `yaml:"c"`
	}
	require.Error(t, yaml.Unmarshal([]byte(`c: "#fff"`), &bad))
	require.Error(t, yaml.Unmarshal([]byte(`c: "#gg0000"`), &bad))
}
