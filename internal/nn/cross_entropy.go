package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/scriven-ml/scriven/tensor"
)

// CrossEntropy computes mean categorical cross-entropy between logits
// and one-hot targets, returning both the loss and its gradient with
// respect to the logits.
//
// The loss uses the LogSoftmax decomposition for numerical stability:
//
//	loss = -sum(targets * log_softmax(logits)) / batch
//
// and the combined softmax + cross-entropy gradient:
//
//	dL/dlogits = (softmax(logits) - targets) / batch
//
// Feeding logits here (rather than probabilities through a softmax
// layer) avoids the overflow and underflow of a naive softmax-then-log.
func CrossEntropy(logits, targets *tensor.Tensor) (float64, *tensor.Tensor) {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("cross entropy: logits must be 2D [N,classes], got %dD", len(shape)))
	}
	if !targets.Shape().Equal(shape) {
		panic(fmt.Sprintf("cross entropy: targets shape %v != logits shape %v", targets.Shape(), shape))
	}

	n, classes := shape[0], shape[1]
	grad := tensor.Zeros(shape.Clone())

	logitsData := logits.Data()
	targetsData := targets.Data()
	gradData := grad.Data()

	totalLoss := 0.0
	invN := 1.0 / float64(n)
	for i := 0; i < n; i++ {
		row := logitsData[i*classes : (i+1)*classes]
		tRow := targetsData[i*classes : (i+1)*classes]
		logProbs := logSoftmax(row)

		for j := 0; j < classes; j++ {
			totalLoss -= tRow[j] * logProbs[j]
			gradData[i*classes+j] = (math.Exp(logProbs[j]) - tRow[j]) * invN
		}
	}

	return totalLoss * invN, grad
}

// logSoftmax computes log(softmax(z)) with the log-sum-exp trick.
//
//	LogSoftmax(z)[i] = z[i] - (max(z) + log(sum(exp(z - max(z)))))
func logSoftmax(z []float64) []float64 {
	maxZ := floats.Max(z)

	sumExp := 0.0
	for _, v := range z {
		sumExp += math.Exp(v - maxZ)
	}
	logSumExp := maxZ + math.Log(sumExp)

	result := make([]float64, len(z))
	for i, v := range z {
		result[i] = v - logSumExp
	}
	return result
}

// Argmax returns the index of the largest value in the slice.
func Argmax(row []float64) int {
	return floats.MaxIdx(row)
}

// Accuracy computes the fraction of rows where the logits' argmax
// matches the one-hot targets' argmax.
func Accuracy(logits, targets *tensor.Tensor) float64 {
	shape := logits.Shape()
	if !targets.Shape().Equal(shape) {
		panic(fmt.Sprintf("accuracy: targets shape %v != logits shape %v", targets.Shape(), shape))
	}

	n, classes := shape[0], shape[1]
	logitsData := logits.Data()
	targetsData := targets.Data()

	correct := 0
	for i := 0; i < n; i++ {
		predicted := Argmax(logitsData[i*classes : (i+1)*classes])
		expected := Argmax(targetsData[i*classes : (i+1)*classes])
		if predicted == expected {
			correct++
		}
	}
	return float64(correct) / float64(n)
}
