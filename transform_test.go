package snotmosaic

import (
	"image"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setanarut/snotmosaic/palette"
)

func TestMain(m *testing.M) {
	SetLogger(nil)
	os.Exit(m.Run())
}

var colC = palette.New(3, "C", 240, 240, 240)

// halves is a 40×20 image, colA on the left and colB on the right.
func halves() *image.RGBA {
	img := uniformImage(40, 20, colA.RGB)
	for y := 0; y < 20; y++ {
		for x := 20; x < 40; x++ {
			img.SetRGBA(x, y, colB.RGB)
		}
	}
	return img
}

func snotTransform(t *testing.T) *Transform {
	t.Helper()
	opt := DefaultOptions()
	opt.Width, opt.Height = 40, 20
	tr, err := New(palette.Palette{colA, colB}, opt)
	require.NoError(t, err)
	return tr
}

func TestType(t *testing.T) {
	t.Parallel()
	for typ := Type(0); typ < numTypes; typ++ {
		got, err := ParseType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}
	got, err := ParseType(" VPlates ")
	require.NoError(t, err)
	assert.Equal(t, VerticalSidePlates, got)
	_, err = ParseType("duplo")
	assert.Error(t, err)

	assert.Equal(t, "Type(9)", Type(9).String())
	assert.Equal(t, 6, SideBricks.UnitHeight())
	assert.Equal(t, 2, VerticalSidePlates.UnitWidth())
	assert.Equal(t, 10, SnotBlock.UnitWidth())
}

func TestOptions(t *testing.T) {
	t.Parallel()
	assert.NoError(t, DefaultOptions().Validate())

	testCases := []struct {
		size image.Point
		want image.Point
	}{
		{image.Pt(640, 480), image.Pt(320, 240)},
		{image.Pt(100, 1000), image.Pt(30, 320)},
		{image.Pt(1, 5000), image.Pt(10, 320)},
		{image.Pt(0, 0), image.Pt(320, 320)},
	}
	for _, tc := range testCases {
		opt := OptionsFromSize(tc.size)
		assert.Equal(t, tc.want, image.Pt(opt.Width, opt.Height), "size %v", tc.size)
		assert.NoError(t, opt.Validate())
	}

	opt := DefaultOptions()
	opt.Width = 25
	assert.ErrorIs(t, opt.Validate(), ErrBlockSize)
	opt.Type = TopStuds
	assert.NoError(t, opt.Validate())
	opt.Height = -1
	assert.Error(t, opt.Validate())
	opt = DefaultOptions()
	opt.Type = Type(9)
	assert.Error(t, opt.Validate())
}

func TestNew(t *testing.T) {
	t.Parallel()
	_, err := New(nil, DefaultOptions())
	assert.ErrorIs(t, err, palette.ErrEmptyPalette)

	opt := DefaultOptions()
	opt.Height = 15
	_, err = New(palette.Palette{colA}, opt)
	assert.ErrorIs(t, err, ErrBlockSize)
}

func TestTransformSnot(t *testing.T) {
	t.Parallel()
	tr := snotTransform(t)
	assert.Equal(t, image.Pt(40, 20), tr.BasicUnitSize())
	assert.Equal(t, image.Pt(40, 20), tr.TransformedSize(image.Pt(400, 123)))

	out, err := tr.Apply(halves())
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 40, 20), out.Bounds())
	assert.Equal(t, colA.RGB, out.RGBAAt(5, 5))
	assert.Equal(t, colB.RGB, out.RGBAAt(35, 15))

	c := tr.Engine().Choices()
	require.NotNil(t, c)
	assert.True(t, c.Complete())
	assert.Equal(t, 4, c.W)
	assert.Equal(t, 2, c.H)

	counts := tr.UsedColorCounts()
	assert.Equal(t, []palette.Counting{{Color: colA, Count: 40}, {Color: colB, Count: 40}}, counts)

	var ins Instructions
	require.NoError(t, tr.BuildInstructions(&ins, image.Rect(0, 0, 4, 2)))
	assert.Len(t, ins, 80)

	cmds, drawn, err := tr.DrawAll(image.Pt(400, 200), DrawOptions{})
	require.NoError(t, err)
	assert.Len(t, cmds, 1+80)
	assert.Equal(t, counts, drawn)
}

func TestTransformMemoization(t *testing.T) {
	t.Parallel()
	tr := snotTransform(t)
	var cd countingDistance
	tr.Engine().Distance = cd.distance
	src := halves()

	out, err := tr.Apply(src)
	require.NoError(t, err)
	first := cd.n.Load()
	require.Positive(t, first)

	again, err := tr.Apply(src)
	require.NoError(t, err)
	assert.Same(t, out, again)
	assert.Equal(t, first, cd.n.Load(), "unchanged inputs must not recompute")

	tr.SetPropagationPercentage(50)
	_, err = tr.Apply(src)
	require.NoError(t, err)
	assert.Equal(t, 2*first, cd.n.Load(), "propagation change must recompute")

	tr.SetPropagationPercentage(50)
	_, err = tr.Apply(src)
	require.NoError(t, err)
	assert.Equal(t, 2*first, cd.n.Load())

	assert.False(t, tr.SetColors(palette.Palette{colA, colB}))
	_, err = tr.Apply(src)
	require.NoError(t, err)
	assert.Equal(t, 2*first, cd.n.Load())

	assert.True(t, tr.SetColors(palette.Palette{colA, colB, colC}))
	assert.Equal(t, colC.ID, tr.Engine().MaxID)
	_, err = tr.Apply(src)
	require.NoError(t, err)
	assert.Equal(t, 3*first, cd.n.Load(), "palette change must recompute")

	tr.SetBasicUnitSize(20, 20)
	out, err = tr.Apply(src)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 20), out.Bounds())
	assert.Greater(t, cd.n.Load(), 3*first)
}

func TestTransformZeroPropagation(t *testing.T) {
	t.Parallel()
	tr := snotTransform(t)
	tr.SetPropagationPercentage(0)
	assert.Equal(t, 0, tr.PropagationPercentage())
	assert.Same(t, tr.threshold, tr.MainQuantizer())

	out, err := tr.Apply(halves())
	require.NoError(t, err)
	assert.Equal(t, colB.RGB, out.RGBAAt(39, 19))
}

func TestTransformCanceled(t *testing.T) {
	t.Parallel()
	tr := snotTransform(t)
	src := halves()

	tr.SetProgress(&stopAfterRows{rows: 0})
	_, err := tr.Apply(src)
	require.ErrorIs(t, err, ErrCanceled)
	assert.Nil(t, tr.Engine().Choices())
	var ins Instructions
	assert.ErrorIs(t, tr.BuildInstructions(&ins, image.Rect(0, 0, 4, 2)), ErrIncomplete)

	// 10 + 4 quantized rows pass, then one of the two block rows.
	tr.SetProgress(&stopAfterRows{rows: 15})
	_, err = tr.Apply(src)
	require.ErrorIs(t, err, ErrCanceled)
	require.NotNil(t, tr.Engine().Choices())
	assert.False(t, tr.Engine().Choices().Complete())
	assert.ErrorIs(t, tr.BuildInstructions(&ins, image.Rect(0, 0, 4, 2)), ErrIncomplete)
	_, _, err = tr.DrawAll(image.Pt(100, 50), DrawOptions{})
	assert.ErrorIs(t, err, ErrIncomplete)

	tr.SetProgress(nil)
	out, err := tr.Apply(src)
	require.NoError(t, err)
	assert.True(t, tr.Engine().Choices().Complete())
	assert.Equal(t, colB.RGB, out.RGBAAt(39, 19))
}

func TestTransformGridTypes(t *testing.T) {
	t.Parallel()
	for _, typ := range []Type{TopStuds, SideBricks, SidePlates, VerticalSidePlates} {
		typ := typ
		t.Run(typ.String(), func(t *testing.T) {
			t.Parallel()
			opt := DefaultOptions()
			opt.Type = typ
			opt.Width, opt.Height = 30, 30
			tr, err := New(palette.Palette{colA, colB}, opt)
			require.NoError(t, err)

			var ins Instructions
			assert.ErrorIs(t, tr.BuildInstructions(&ins, image.Rect(0, 0, 30, 30)), ErrIncomplete)
			assert.Nil(t, tr.UsedColorCounts())

			out, err := tr.Apply(uniformImage(60, 90, colA.RGB))
			require.NoError(t, err)
			require.Equal(t, image.Rect(0, 0, 30, 30), out.Bounds())
			assert.Equal(t, colA.RGB, out.RGBAAt(29, 29))

			units := image.Pt(30/typ.UnitWidth(), 30/typ.UnitHeight())
			assert.Equal(t, units, tr.BasicUnitSize())
			g := tr.Grid()
			require.NotNil(t, g)
			assert.Equal(t, units, image.Pt(g.W, g.H))

			n := units.X * units.Y
			require.NoError(t, tr.BuildInstructions(&ins, image.Rect(0, 0, units.X, units.Y)))
			assert.Len(t, ins, n)
			assert.False(t, ins[0].Sideways)
			assert.Equal(t, []palette.Counting{{Color: colA, Count: n}}, tr.UsedColorCounts())

			cmds, counts, err := tr.DrawAll(image.Pt(300, 300), DrawOptions{Labels: true})
			require.NoError(t, err)
			assert.Len(t, cmds, 1+2*n)
			assert.Equal(t, tr.UsedColorCounts(), counts)
		})
	}
}

func TestTransformSetType(t *testing.T) {
	t.Parallel()
	tr := snotTransform(t)
	src := halves()
	_, err := tr.Apply(src)
	require.NoError(t, err)

	tr.SetType(SidePlates)
	assert.Equal(t, SidePlates, tr.Type())
	assert.Equal(t, image.Pt(8, 10), tr.BasicUnitSize())
	out, err := tr.Apply(src)
	require.NoError(t, err)
	assert.Equal(t, colB.RGB, out.RGBAAt(39, 0))

	tr.SetType(Type(42))
	_, err = tr.Apply(src)
	assert.Error(t, err)
}
