package exclusion

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCache(t *testing.T) {
	c := NewCache()

	_, ok := c.Get("/Folder")
	assert.False(t, ok)

	c.Set("/Folder", true)
	excluded, ok := c.Get("/Folder")
	assert.True(t, ok)
	assert.True(t, excluded)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Concurrent(t *testing.T) {
	c := NewCache()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("/f%d", i%10)
			c.Set(key, i%2 == 0)
			c.Get(key)
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, c.Len())
}
