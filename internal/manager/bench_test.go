package manager

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/wawi/internal/sqlite"
	"github.com/mesh-intelligence/wawi/pkg/types"
)

func benchProducts(b *testing.B, seed int) *Products {
	b.Helper()
	ctx := context.Background()

	conn := sqlite.NewBackend(filepath.Join(b.TempDir(), "bench.db"), zerolog.Nop())
	if err := conn.Open(ctx); err != nil {
		b.Fatalf("open: %v", err)
	}
	b.Cleanup(func() { conn.Close() })
	if err := conn.EnsureSchema(ctx); err != nil {
		b.Fatalf("schema: %v", err)
	}

	m, err := NewProducts(ctx, conn, zerolog.Nop())
	if err != nil {
		b.Fatalf("manager: %v", err)
	}
	for i := 0; i < seed; i++ {
		p := &types.Product{Name: fmt.Sprintf("Benchmark product %d", i), Price: 9.99, Quantity: i}
		if err := m.Add(ctx, p); err != nil {
			b.Fatalf("seed %d: %v", i, err)
		}
	}
	return m
}

func BenchmarkManager_Add(b *testing.B) {
	m := benchProducts(b, 0)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := &types.Product{Name: "Laptop", Price: 999.99, Quantity: 10}
		if err := m.Add(ctx, p); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkManager_Update(b *testing.B) {
	m := benchProducts(b, 100)
	ctx := context.Background()
	items := m.Items()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := items[i%len(items)]
		p.Quantity = i
		if err := m.Update(ctx, p); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkManager_LoadAll(b *testing.B) {
	for _, size := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("rows=%d", size), func(b *testing.B) {
			m := benchProducts(b, size)
			ctx := context.Background()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := m.LoadAll(ctx); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
