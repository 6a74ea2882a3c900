package lang

// callNext drives a parallelTasks group forward by one step: every member
// that defines a `stepN` method for the current step number runs it
// concurrently; members without that step are silently skipped.
// An error is raised only when no member at all has the step — the group
// is considered exhausted.
func (interp *Interpreter) callNext(group *ParallelTasks, pos Position) (Value, error) {
	step := group.NextStep()
	branches := make([]func() error, 0, len(group.Members))
	anyHasStep := false
	for _, member := range group.Members {
		method, ok := member.MethodByStep(step)
		if !ok {
			continue
		}
		anyHasStep = true
		member, method := member, method
		branches = append(branches, func() error {
			_, err := interp.evalStatements(method.Body, NewEnv(member.Env))
			return err
		})
	}
	if !anyHasStep {
		return nil, NewRuntimeError(pos, "parallelTasks group exhausted at step %d", step)
	}
	if err := runBranches(branches); err != nil {
		return nil, &ParallelError{Pos: pos, Err: err}
	}
	return UnitValue, nil
}

// callTaskUnitMethod invokes a taskunit instance's zero-argument method by
// name directly, outside of a parallelTasks group's step cadence.
func (interp *Interpreter) callTaskUnitMethod(inst *TaskUnitInstance, name string, args []Value, pos Position) (Value, error) {
	if len(args) != 0 {
		return nil, NewRuntimeError(pos, "method %s takes no arguments", name)
	}
	for _, m := range inst.Class.Methods {
		if m.Name == name {
			return interp.evalStatements(m.Body, NewEnv(inst.Env))
		}
	}
	return nil, NewRuntimeError(pos, "taskunit %s has no method %s", inst.Class.Name, name)
}
