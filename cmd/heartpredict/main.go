// heartpredict serves and runs the heart disease classifiers.
//
// Usage:
//
//	heartpredict serve [--config=config.yaml]
//	heartpredict predict --csv=<in.csv> [--out=heart_predictions.csv]
//	heartpredict models
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
