// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package neuralucb

const (
	learningRate = 0.01

	// maxTrainUpdates caps parameter updates in one Train call. The
	// cap, not the convergence exit, is the termination guarantee:
	// small or contradictory logs can fail to converge indefinitely.
	maxTrainUpdates = 100

	// convergenceLoss ends Train early once a full sweep's mean loss
	// drops below it.
	convergenceLoss = 1e-3

	// batchSteps and maxBatchSize bound TrainBatch's work.
	batchSteps   = 10
	maxBatchSize = 32
)

// Train appends the observed pair to the experience log and fits the
// network to the full log: repeated shuffled sweeps of single-example
// Adam updates until a sweep's mean loss falls below the convergence
// threshold or the per-call update cap is hit. Returns the final
// sweep's mean loss on convergence, or the running mean across all
// updates when the cap fires.
//
// Latency grows with the log; callers on a hot path should prefer
// TrainBatch.
func (a *Agent) Train(context []float64, reward float64) (float64, error) {
	if err := a.validContext("train", context); err != nil {
		return 0, err
	}
	if err := validReward("train", reward); err != nil {
		return 0, err
	}
	a.log.add(context, reward)

	indices := make([]int, a.log.size())
	for i := range indices {
		indices[i] = i
	}

	var runningLoss float64
	updates := 0
	for {
		a.rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		var sweepLoss float64
		for _, idx := range indices {
			loss := a.step(a.log.contexts[idx], a.log.rewards[idx])
			sweepLoss += loss
			runningLoss += loss
			updates++
			if updates >= maxTrainUpdates {
				return runningLoss / float64(updates), nil
			}
		}

		if mean := sweepLoss / float64(len(indices)); mean < convergenceLoss {
			return mean, nil
		}
	}
}

// step performs one forward/backward/Adam update on a single example
// and returns its squared-error loss.
func (a *Agent) step(context []float64, reward float64) float64 {
	value := a.net.forward(context)
	delta := value - reward
	a.net.backward(context, 2*delta)
	a.store.adamStep(learningRate)
	return delta * delta
}

// TrainBatch appends the observed pair and performs a fixed number of
// mini-batch Adam steps over the log, bounding the work regardless of
// log size. Each step samples min(32, n) distinct log entries,
// accumulates the mean squared-error gradient, and applies one
// update. Returns the mean of the per-step batch losses.
func (a *Agent) TrainBatch(context []float64, reward float64) (float64, error) {
	if err := a.validContext("train_batch", context); err != nil {
		return 0, err
	}
	if err := validReward("train_batch", reward); err != nil {
		return 0, err
	}
	a.log.add(context, reward)

	n := a.log.size()
	batch := min(maxBatchSize, n)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	var total float64
	for range batchSteps {
		// Partial Fisher-Yates: after the loop the first batch
		// entries are a uniform sample without replacement.
		for i := range batch {
			j := i + a.rng.Intn(n-i)
			indices[i], indices[j] = indices[j], indices[i]
		}

		var batchLoss float64
		for _, idx := range indices[:batch] {
			value := a.net.forward(a.log.contexts[idx])
			delta := value - a.log.rewards[idx]
			a.net.backward(a.log.contexts[idx], 2*delta/float64(batch))
			batchLoss += delta * delta
		}
		a.store.adamStep(learningRate)
		total += batchLoss / float64(batch)
	}

	return total / batchSteps, nil
}
