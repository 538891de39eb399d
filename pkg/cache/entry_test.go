package cache

import (
	"testing"
	"time"
)

func TestEntryAge(t *testing.T) {
	entry := &Entry{
		Data:       []byte(`{}`),
		StatusCode: 200,
		CachedAt:   time.Now().Add(-30 * time.Second),
	}

	age := entry.Age()
	if age < 29*time.Second || age > 31*time.Second {
		t.Errorf("Age() = %v, want about 30s", age)
	}
}
