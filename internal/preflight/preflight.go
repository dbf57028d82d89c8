package preflight

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks a batch run depends on: the prediction
// directory must be readable and the output directory writable with some
// headroom. A failed result halts the batch before any worker starts.
func RunAll(predDir, outDir string) []Result {
	results := []Result{
		CheckReadableDirectory("Prediction directory", predDir),
		CheckDirectoryAccess("Output directory", outDir),
	}
	results = append(results, CheckFreeSpace("Output free space", outDir, minFreeBytes))
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, res := range results {
		if !res.Passed {
			return false
		}
	}
	return true
}
