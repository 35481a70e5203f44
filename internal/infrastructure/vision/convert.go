package vision

import (
	"encoding/binary"
	"fmt"
	"math"

	"derma-bot/internal/domain/entity"
)

// GoCVOptions параметры модели для бэкенда OpenCV DNN
type GoCVOptions struct {
	ModelPath      string
	Classes        int
	Size           int  // сторона квадратного входа
	ChannelsFirst  bool // вход [1, 3, H, W] вместо [1, H, W, 3]
	OutputIsLogits bool
}

// blobInput форма и данные входного блоба в раскладке модели
func blobInput(tensor *entity.ImageTensor, size int, channelsFirst bool) ([]int, []float32, error) {
	if tensor.Height != size || tensor.Width != size || tensor.Channels != entity.InputChannels {
		return nil, nil, fmt.Errorf("tensor %dx%dx%d does not match model input %dx%dx%d",
			tensor.Height, tensor.Width, tensor.Channels, size, size, entity.InputChannels)
	}
	if channelsFirst {
		return []int{1, tensor.Channels, tensor.Height, tensor.Width}, tensor.CHW(), nil
	}
	return []int{1, tensor.Height, tensor.Width, tensor.Channels}, tensor.Data, nil
}

// toProbabilities копирует выход сети и сверяет его длину с таблицей классов
func toProbabilities(raw []float32, classes int, outputIsLogits bool) (entity.ProbabilityVector, error) {
	if len(raw) != classes {
		return nil, &entity.SchemaMismatchError{Expected: classes, Actual: len(raw)}
	}
	if outputIsLogits {
		return entity.Softmax(raw), nil
	}
	probs := make(entity.ProbabilityVector, len(raw))
	copy(probs, raw)
	return probs, nil
}

// float32Bytes упаковывает значения в байты в порядке little-endian, как ждёт Mat
func float32Bytes(data []float32) []byte {
	out := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	return out
}
