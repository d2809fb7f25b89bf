package registry

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Kuowrk/fragma/common"
	"github.com/Kuowrk/fragma/engine/logger"
)

// decodedImage is the result of decoding one configured texture file.
type decodedImage struct {
	name string
	img  common.ImageData
	err  error
}

// decodeTextureFiles decodes every file on a worker pool and returns the results sorted by name.
// The first failure in name order is returned as the error.
func decodeTextureFiles(files map[string]string, workers int) ([]decodedImage, error) {
	if len(files) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)

	pool := worker.NewDynamicWorkerPool(workers, len(names), 1*time.Second)
	defer pool.Stop()

	results := make([]decodedImage, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		path := files[name]
		pool.SubmitTask(worker.Task{
			ID:      i,
			Payload: path,
			Do: func() (any, error) {
				defer wg.Done()
				img, err := common.DecodeImageFile(path)
				results[i] = decodedImage{name: name, img: img, err: err}
				return nil, err
			},
		})
	}
	wg.Wait()

	for _, res := range results {
		if res.err != nil {
			return nil, fmt.Errorf("failed to decode texture %q from %s: %w", res.name, files[res.name], res.err)
		}
		logger.Debugf("decoded texture %q (%dx%d)", res.name, res.img.Width, res.img.Height)
	}
	return results, nil
}
