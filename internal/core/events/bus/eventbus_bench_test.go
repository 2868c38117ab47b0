package bus

import "testing"

func BenchmarkPublishTypedAndWildcard(b *testing.B) {
	eb := New()
	for i := 0; i < 4; i++ {
		_, _ = eb.Subscribe("projectile.impact", func(Event) error { return nil })
	}
	_, _ = eb.Subscribe(Wildcard, func(Event) error { return nil })
	ev := NewEvent("projectile.impact", "projectiles", 1, nil)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = eb.Publish(ev)
	}
}
