package model

// accuracy is the fraction of predictions matching the true class.
func accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue))
}

// macroPrecisionRecall computes per-class precision and recall and averages
// them over the classes that appear in either the truth or the predictions.
// Absent classes do not dilute the average.
func macroPrecisionRecall(yTrue, yPred []int, numClasses int) (prec, rec float64) {
	tp := make([]int, numClasses)
	fp := make([]int, numClasses)
	fn := make([]int, numClasses)

	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			tp[yTrue[i]]++
		} else {
			fp[yPred[i]]++
			fn[yTrue[i]]++
		}
	}

	var precSum, recSum float64
	var precCount, recCount int
	for c := 0; c < numClasses; c++ {
		if tp[c]+fp[c] > 0 {
			precSum += float64(tp[c]) / float64(tp[c]+fp[c])
			precCount++
		}
		if tp[c]+fn[c] > 0 {
			recSum += float64(tp[c]) / float64(tp[c]+fn[c])
			recCount++
		}
	}

	if precCount > 0 {
		prec = precSum / float64(precCount)
	}
	if recCount > 0 {
		rec = recSum / float64(recCount)
	}
	return prec, rec
}
