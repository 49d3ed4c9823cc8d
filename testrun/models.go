package testrun

// Models lists the GORM models of the run history schema, for AutoMigrate.
func Models() []interface{} {
	return []interface{}{&TestRun{}, &StepRecord{}, &TestRunAsset{}}
}
