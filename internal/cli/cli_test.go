package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/shop-recommender/internal/catalog"
	"github.com/rcliao/shop-recommender/internal/config"
	"github.com/rcliao/shop-recommender/internal/model"
	"github.com/rcliao/shop-recommender/internal/session"
	"github.com/rcliao/shop-recommender/internal/store"
)

func testCatalog() *catalog.Catalog {
	return catalog.New([]model.Product{
		{ID: "p2", Title: "Nike Pegasus 41", Category: "shoes", Brand: "Nike", Tags: []string{"running"}, Price: 150, Rating: 4.6, TotalSales: 80},
		{ID: "p5", Title: "Cork Yoga Mat", Category: "sports", Tags: []string{"yoga"}, Price: 25},
	}, nil)
}

func newTestChat(t *testing.T) (*chatSession, *bytes.Buffer) {
	t.Helper()
	s := store.NewMemoryStore()
	t.Cleanup(func() { s.Close() })
	var out bytes.Buffer
	cs := newChatSession(session.NewManager(s), testCatalog(), "u1", &out, false)
	require.NoError(t, cs.start(context.Background()))
	return cs, &out
}

func TestChatSession_Start(t *testing.T) {
	cs, out := newTestChat(t)
	assert.NotEmpty(t, cs.convID)
	assert.Contains(t, out.String(), "conversation "+cs.convID)
	assert.Contains(t, out.String(), session.WelcomeMessage)
}

func TestChatSession_Recommends(t *testing.T) {
	cs, out := newTestChat(t)
	ctx := context.Background()
	out.Reset()

	done, err := cs.handle(ctx, "I need Nike running shoes under $200")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Contains(t, out.String(), "assistant>")
	assert.Contains(t, out.String(), "1. Nike Pegasus 41  $150.00")
	assert.Contains(t, out.String(), "Brand: Nike")

	out.Reset()
	_, err = cs.handle(ctx, "/context")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "brands:     nike")
	assert.Contains(t, out.String(), "price:      <= $200.00")

	out.Reset()
	_, err = cs.handle(ctx, "/history")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "user: I need Nike running shoes under $200")
	assert.Contains(t, out.String(), "ai: ")
}

func TestChatSession_Commands(t *testing.T) {
	cs, _ := newTestChat(t)
	ctx := context.Background()

	done, err := cs.handle(ctx, "   ")
	require.NoError(t, err)
	assert.False(t, done)

	first := cs.convID
	_, err = cs.handle(ctx, "/new")
	require.NoError(t, err)
	assert.NotEqual(t, first, cs.convID)

	for _, cmd := range []string{"exit", "quit", "/quit"} {
		done, err := cs.handle(ctx, cmd)
		require.NoError(t, err)
		assert.True(t, done, cmd)
	}
}

func TestChatSession_ScanLoop(t *testing.T) {
	cs, out := newTestChat(t)
	out.Reset()

	in := strings.NewReader("hello\nshow me yoga mats\nexit\nnever read\n")
	require.NoError(t, cs.scanLoop(context.Background(), in))

	msgs, err := cs.manager.History(context.Background(), cs.convID, 50)
	require.NoError(t, err)
	assert.Len(t, msgs, 4)
	assert.NotContains(t, out.String(), "never read")
}

func TestWriteTable_AlignsWideRunes(t *testing.T) {
	var buf bytes.Buffer
	writeTable(&buf, []string{"A", "B"}, [][]string{{"日本", "x"}, {"ab", "y"}})
	assert.Equal(t, "A     B\n----  -\n日本  x\nab    y\n", buf.String())
}

func TestWriteTable_TruncatesLongCells(t *testing.T) {
	var buf bytes.Buffer
	writeTable(&buf, []string{"T"}, [][]string{{strings.Repeat("x", 60)}})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[2], "…"))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$1,234.50", formatPrice(1234.5))
	assert.Equal(t, "$25.00", formatPrice(25))

	lo, hi := 50.0, 100.0
	assert.Equal(t, "$50.00 - $100.00", formatRange(&model.PriceRange{Min: &lo, Max: &hi}))
	assert.Equal(t, ">= $50.00", formatRange(&model.PriceRange{Min: &lo}))
	assert.Equal(t, "-", formatRange(nil))
}

func TestSetup(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Cleanup(func() {
		storeKind, formatFlag, debugFlag = "", "json", false
		cfg = config.DefaultConfig()
	})

	storeKind, formatFlag = "memory", "text"
	require.NoError(t, setup(RootCmd, nil))
	assert.Equal(t, config.StoreMemory, cfg.Store)
	assert.True(t, textFormat())

	s, err := openStore()
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryStore{}, s)
	s.Close()

	_, err = openSQLite()
	assert.Error(t, err)

	formatFlag = "xml"
	err = setup(RootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}
