package training

import (
	"math"
	"math/rand"
	"sort"
)

func indicesByClass(y []int) map[int][]int {
	byClass := map[int][]int{}
	for i, c := range y {
		byClass[c] = append(byClass[c], i)
	}
	return byClass
}

func sortedClasses(byClass map[int][]int) []int {
	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)
	return classes
}

// StratifiedSplit holds out testSize of every class. Each class keeps at
// least one row on both sides. The same seed gives the same split.
func StratifiedSplit(y []int, testSize float64, seed int64) (train, test []int, err error) {
	byClass := indicesByClass(y)
	if len(byClass) < 2 {
		return nil, nil, ErrSingleClass
	}

	rng := rand.New(rand.NewSource(seed))
	for _, c := range sortedClasses(byClass) {
		idx := append([]int(nil), byClass[c]...)
		if len(idx) < 2 {
			return nil, nil, ErrSingleClass
		}
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		nTest := int(math.Round(float64(len(idx)) * testSize))
		if nTest < 1 {
			nTest = 1
		}
		if nTest > len(idx)-1 {
			nTest = len(idx) - 1
		}
		test = append(test, idx[:nTest]...)
		train = append(train, idx[nTest:]...)
	}
	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}

// StratifiedKFold deals every class round-robin into k folds.
func StratifiedKFold(y []int, k int, seed int64) [][]int {
	folds := make([][]int, k)
	rng := rand.New(rand.NewSource(seed))
	byClass := indicesByClass(y)

	next := 0
	for _, c := range sortedClasses(byClass) {
		idx := append([]int(nil), byClass[c]...)
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		for _, i := range idx {
			folds[next%k] = append(folds[next%k], i)
			next++
		}
	}
	for _, f := range folds {
		sort.Ints(f)
	}
	return folds
}
