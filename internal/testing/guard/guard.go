package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("MESA_TEST_MODE") == "" {
			_ = os.Setenv("MESA_TEST_MODE", "1")
		}
	})
}
