/*
Package operation runs one transformation result against a working tree.

	+-------------+     +-----------+     +--------+
	| RecordSource| --> | classify  | --> |  scan  |
	+-------------+     +-----------+     +---+----+
	                                          |
	                   +----------------------+---------------------+
	                   |                                            |
	          +--------+--------+                          +--------+-------+
	          | reconcile.Apply |                          | patch.Serialize |
	          | reconcile.Reap  |                          | patch.WriteFile |
	          +--------+--------+                          +--------+-------+
	                   |                                            |
	                   +---------------> status.Report <------------+

🎯 Purpose:
- Loads records and drops the ones matching an exclusion glob
- Classifies them and stops on the first engine error before any write
- Applies them in order, or renders them as one patch in dry-run mode
- Returns an explicit report; Publish prints it

🔄 Flow:
1. Source.Records loads the run result
2. Exclusions filter records by before or after path
3. classify.Classify groups the rest, scan.Check refuses engine errors
4. Apply writes and reaps, DryRun writes the patch file
5. The caller hands the report to Publish

🔍 Example:

	op, err := operation.New(operation.Options{
		Fs:     afero.NewOsFs(),
		Root:   root,
		Source: operation.ManifestSource{Loader: loader, Path: "changes.yaml"},
	})
	if err != nil {
		return err
	}
	report, err := op.Apply(ctx)
	if perr := operation.Publish(ctx, logger, report); perr != nil {
		return perr
	}
	return err
*/
package operation
