package migration

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tallyfy/migrator/pkg/checkpoint"
	"github.com/tallyfy/migrator/pkg/client"
	"github.com/tallyfy/migrator/pkg/events"
	"github.com/tallyfy/migrator/pkg/model"
	"github.com/tallyfy/migrator/pkg/source"
	"github.com/tallyfy/migrator/pkg/tallyfy"
)

// phaseResult is what one phase hands back to the run loop.
type phaseResult struct {
	processed int
	failed    int
	skipped   bool
	issues    []Issue
}

func (o *Orchestrator) runPhase(ctx context.Context, run *checkpoint.Run, phase checkpoint.Phase) (phaseResult, error) {
	switch phase {
	case checkpoint.PhaseDiscovery:
		return o.discover(ctx)
	case checkpoint.PhaseUsers:
		return o.migrateMembers(ctx, run)
	case checkpoint.PhaseGroups:
		return o.migrateGroups(ctx, run)
	case checkpoint.PhaseTemplates:
		return o.migrateTemplates(ctx, run)
	case checkpoint.PhaseInstances:
		return o.migrateInstances(ctx, run)
	case checkpoint.PhaseValidation:
		return o.validate(ctx, run)
	default:
		return phaseResult{}, fmt.Errorf("unknown phase %q", phase)
	}
}

// ensure looks up the mapping for (kind, sourceID) and creates the target
// object only when it is not already done. create receives the idempotency
// key recorded in the intent mapping, so a crash between the remote call and
// the done record replays with the same key on the next run and the target
// deduplicates instead of creating twice.
func (o *Orchestrator) ensure(
	ctx context.Context,
	run *checkpoint.Run,
	kind, sourceID string,
	create func(ctx context.Context, key string) (string, error),
) (string, bool, error) {
	if o.opts.DryRun {
		return "", false, nil
	}

	mapping, err := o.store.MappingFor(ctx, run.ID, kind, sourceID)

	switch {
	case err == nil:
		if mapping.Status == checkpoint.MappingDone {
			o.logger.Debug("Item already migrated, skipping",
				"kind", kind, "source_id", sourceID, "target_id", mapping.TargetID)

			return mapping.TargetID, false, nil
		}
	case checkpoint.IsMappingNotFound(err):
		mapping = &checkpoint.Mapping{
			RunID:    run.ID,
			Kind:     kind,
			SourceID: sourceID,
			Key:      uuid.NewString(),
			Status:   checkpoint.MappingIntent,
		}

		if err := o.store.SaveMapping(ctx, mapping); err != nil {
			return "", false, fmt.Errorf("failed to record intent for %s %s: %w", kind, sourceID, err)
		}
	default:
		return "", false, fmt.Errorf("failed to look up mapping for %s %s: %w", kind, sourceID, err)
	}

	targetID, err := create(ctx, mapping.Key)
	if err != nil {
		return "", false, err
	}

	mapping.TargetID = targetID
	mapping.Status = checkpoint.MappingDone

	if err := o.store.SaveMapping(ctx, mapping); err != nil {
		return "", false, fmt.Errorf("failed to record completion for %s %s: %w", kind, sourceID, err)
	}

	return targetID, true, nil
}

func (o *Orchestrator) discover(ctx context.Context) (phaseResult, error) {
	discovery, err := o.source.Discover(ctx)
	if err != nil {
		return phaseResult{}, fmt.Errorf("failed to discover %s inventory: %w", o.source.Name(), err)
	}

	for _, warning := range discovery.Warnings {
		o.logger.Warn("Discovery warning", "warning", warning)
	}

	o.logger.Info("Discovery complete",
		"members", discovery.Members,
		"groups", discovery.Groups,
		"templates", discovery.Templates,
		"instances", discovery.Instances,
		"total", discovery.Total())

	return phaseResult{processed: discovery.Total()}, nil
}

func (o *Orchestrator) migrateMembers(ctx context.Context, run *checkpoint.Run) (phaseResult, error) {
	members, err := o.source.Members(ctx)
	if err != nil {
		return phaseResult{}, fmt.Errorf("failed to list source members: %w", err)
	}

	var res phaseResult

	for _, member := range members {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if member.Email == "" {
			continue
		}

		if !member.Active {
			o.logger.Debug("Skipping deactivated member", "email", member.Email)

			continue
		}

		if o.opts.DryRun {
			o.logger.Debug("Dry run, would invite member", "email", member.Email, "role", member.Role)

			res.processed++

			continue
		}

		email := strings.ToLower(member.Email)

		targetID, created, err := o.ensure(ctx, run, KindMember, email,
			func(ctx context.Context, key string) (string, error) {
				record, err := o.target.InviteMember(ctx, tallyfy.InviteMemberOptions{
					Email:          member.Email,
					FirstName:      member.FirstName,
					LastName:       member.LastName,
					Role:           string(member.Role),
					IdempotencyKey: key,
				})
				if err != nil {
					return "", err
				}

				return record.ID, nil
			})
		if err != nil {
			if fatal(err) {
				return res, err
			}

			res.failed++
			o.itemFailed(ctx, run, checkpoint.PhaseUsers, KindMember, email, err)

			continue
		}

		res.processed++

		if created {
			o.itemMigrated(ctx, run, checkpoint.PhaseUsers, KindMember, email, targetID)
		}
	}

	return res, nil
}

func (o *Orchestrator) migrateGroups(ctx context.Context, run *checkpoint.Run) (phaseResult, error) {
	lister, ok := o.source.(source.GroupLister)
	if !ok {
		o.logger.Info("Source has no groups, skipping phase")

		return phaseResult{skipped: true}, nil
	}

	groups, err := lister.Groups(ctx)
	if err != nil {
		return phaseResult{}, fmt.Errorf("failed to list source groups: %w", err)
	}

	var res phaseResult

	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if o.opts.DryRun {
			o.logger.Debug("Dry run, would create group", "name", group.Name, "members", len(group.Members))

			res.processed++

			continue
		}

		targetID, created, err := o.createGroup(ctx, run, group)
		if err != nil {
			if fatal(err) {
				return res, err
			}

			res.failed++
			o.itemFailed(ctx, run, checkpoint.PhaseGroups, KindGroup, group.SourceID, err)

			continue
		}

		res.processed++

		if created {
			o.itemMigrated(ctx, run, checkpoint.PhaseGroups, KindGroup, group.SourceID, targetID)
		}
	}

	return res, nil
}

// createGroup ensures one group exists in the target, resolving member
// emails to target member ids through the mapping table. Members that were
// never migrated are left out with a warning rather than failing the group.
func (o *Orchestrator) createGroup(ctx context.Context, run *checkpoint.Run, group model.Group) (string, bool, error) {
	sourceID := group.SourceID
	if sourceID == "" {
		sourceID = "name:" + group.Name
	}

	return o.ensure(ctx, run, KindGroup, sourceID,
		func(ctx context.Context, key string) (string, error) {
			memberIDs := make([]string, 0, len(group.Members))

			for _, email := range group.Members {
				mapping, err := o.store.MappingFor(ctx, run.ID, KindMember, strings.ToLower(email))

				switch {
				case checkpoint.IsMappingNotFound(err) || (err == nil && mapping.Status != checkpoint.MappingDone):
					o.logger.Warn("Group member was not migrated, leaving them out",
						"group", group.Name, "email", email)

					continue
				case err != nil:
					return "", fmt.Errorf("failed to resolve group member %s: %w", email, err)
				}

				memberIDs = append(memberIDs, mapping.TargetID)
			}

			record, err := o.target.CreateGroup(ctx, tallyfy.CreateGroupOptions{
				Name:           group.Name,
				MemberIDs:      memberIDs,
				IdempotencyKey: key,
			})
			if err != nil {
				return "", err
			}

			return record.ID, nil
		})
}

func (o *Orchestrator) migrateTemplates(ctx context.Context, run *checkpoint.Run) (phaseResult, error) {
	templates, err := o.source.Templates(ctx)
	if err != nil {
		return phaseResult{}, fmt.Errorf("failed to extract source templates: %w", err)
	}

	var res phaseResult

	for _, template := range templates {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		for _, warning := range template.Warnings {
			o.logger.Warn("Template caveat", "template", template.Title, "warning", warning)
		}

		if o.opts.DryRun {
			o.logger.Debug("Dry run, would create template",
				"title", template.Title,
				"steps", len(template.Steps),
				"kickoff_fields", len(template.Captures),
				"rules", len(template.Rules))

			res.processed++

			continue
		}

		targetID, created, err := o.ensure(ctx, run, KindTemplate, template.SourceID,
			func(ctx context.Context, key string) (string, error) {
				return o.createTemplate(ctx, run, template, key)
			})
		if err != nil {
			if fatal(err) {
				return res, err
			}

			res.failed++
			o.itemFailed(ctx, run, checkpoint.PhaseTemplates, KindTemplate, template.SourceID, err)

			continue
		}

		res.processed++

		if created {
			o.itemMigrated(ctx, run, checkpoint.PhaseTemplates, KindTemplate, template.SourceID, targetID)
		}
	}

	return res, nil
}

// createTemplate builds a checklist out of one template: the shell, kickoff
// form, steps with their captures, conditional rules and lane groups. Every
// nested call derives its idempotency key from the template's, so a replay
// after a crash re-sends the same keys and the target deduplicates.
func (o *Orchestrator) createTemplate(
	ctx context.Context,
	run *checkpoint.Run,
	template model.Template,
	key string,
) (string, error) {
	existing, err := o.target.FindChecklistByTitle(ctx, template.Title)

	switch {
	case err == nil:
		o.logger.Info("Checklist with the same title already exists, reusing it",
			"title", template.Title, "checklist_id", existing.ID)

		return existing.ID, nil
	case !errors.Is(err, client.ErrNotFound):
		return "", err
	}

	for _, group := range template.Groups {
		if _, _, err := o.createGroup(ctx, run, group); err != nil {
			return "", fmt.Errorf("failed to create group %q: %w", group.Name, err)
		}
	}

	checklist, err := o.target.CreateChecklist(ctx, tallyfy.CreateChecklistOptions{
		Title:          template.Title,
		Description:    template.Description,
		Tags:           template.Tags,
		IdempotencyKey: key,
	})
	if err != nil {
		return "", err
	}

	for _, capture := range template.Captures {
		opts := captureOptions(checklist.ID, "", capture)
		opts.IdempotencyKey = key + ":prerun:" + captureRef(capture)

		if _, err := o.target.AddCapture(ctx, opts); err != nil {
			return "", fmt.Errorf("failed to add kickoff field %q: %w", capture.Label, err)
		}
	}

	for _, step := range template.Steps {
		alias := stepAlias(step)

		record, err := o.target.AddStep(ctx, tallyfy.AddStepOptions{
			ChecklistID:    checklist.ID,
			Alias:          alias,
			Title:          step.Title,
			Description:    step.Description,
			Type:           step.Type,
			Position:       step.Position,
			Assignees:      step.Assignees,
			GroupNames:     step.GroupNames,
			Deadline:       step.Deadline,
			Webhook:        step.Webhook,
			IdempotencyKey: key + ":step:" + alias,
		})
		if err != nil {
			return "", fmt.Errorf("failed to add step %q: %w", step.Title, err)
		}

		if step.SourceID != "" {
			mapping := &checkpoint.Mapping{
				RunID:    run.ID,
				Kind:     KindStep,
				SourceID: template.SourceID + "/" + step.SourceID,
				TargetID: record.ID,
				Status:   checkpoint.MappingDone,
			}

			if err := o.store.SaveMapping(ctx, mapping); err != nil {
				return "", fmt.Errorf("failed to record step mapping for %s: %w", step.SourceID, err)
			}
		}

		for _, capture := range step.Captures {
			opts := captureOptions(checklist.ID, record.ID, capture)
			opts.IdempotencyKey = key + ":step:" + alias + ":" + captureRef(capture)

			if _, err := o.target.AddCapture(ctx, opts); err != nil {
				return "", fmt.Errorf("failed to add field %q to step %q: %w", capture.Label, step.Title, err)
			}
		}
	}

	for i, rule := range template.Rules {
		_, err := o.target.CreateRule(ctx, tallyfy.CreateRuleOptions{
			ChecklistID:    checklist.ID,
			CaptureRef:     rule.CaptureRef,
			Operator:       rule.Operator,
			Value:          rule.Value,
			Action:         rule.Action,
			TargetSteps:    rule.TargetSteps,
			IdempotencyKey: fmt.Sprintf("%s:rule:%d", key, i),
		})
		if err != nil {
			return "", fmt.Errorf("failed to create rule on %s: %w", rule.CaptureRef, err)
		}
	}

	return checklist.ID, nil
}

func (o *Orchestrator) migrateInstances(ctx context.Context, run *checkpoint.Run) (phaseResult, error) {
	lister, ok := o.source.(source.InstanceLister)
	if !ok {
		o.logger.Info("Source has no instances, skipping phase")

		return phaseResult{skipped: true}, nil
	}

	instances, err := lister.Instances(ctx)
	if err != nil {
		return phaseResult{}, fmt.Errorf("failed to list source instances: %w", err)
	}

	var res phaseResult

	for _, instance := range instances {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if o.opts.DryRun {
			o.logger.Debug("Dry run, would launch process",
				"name", instance.Name, "template", instance.TemplateSourceID, "status", instance.Status)

			res.processed++

			continue
		}

		templateMapping, err := o.store.MappingFor(ctx, run.ID, KindTemplate, instance.TemplateSourceID)

		switch {
		case checkpoint.IsMappingNotFound(err) || (err == nil && templateMapping.Status != checkpoint.MappingDone):
			res.failed++
			o.itemFailed(ctx, run, checkpoint.PhaseInstances, KindInstance, instance.SourceID,
				fmt.Errorf("template %s has not been migrated", instance.TemplateSourceID))

			continue
		case err != nil:
			return res, fmt.Errorf("failed to resolve template for instance %s: %w", instance.SourceID, err)
		}

		targetID, created, err := o.ensure(ctx, run, KindInstance, instance.SourceID,
			func(ctx context.Context, key string) (string, error) {
				record, err := o.target.LaunchProcess(ctx, tallyfy.LaunchProcessOptions{
					ChecklistID:    templateMapping.TargetID,
					Name:           instance.Name,
					OwnerEmail:     instance.Owner,
					FieldValues:    stringFieldValues(instance.FieldValues),
					IdempotencyKey: key,
				})
				if err != nil {
					return "", err
				}

				return record.ID, nil
			})
		if err != nil {
			if fatal(err) {
				return res, err
			}

			res.failed++
			o.itemFailed(ctx, run, checkpoint.PhaseInstances, KindInstance, instance.SourceID, err)

			continue
		}

		if created {
			if err := o.replayProgress(ctx, targetID, instance); err != nil {
				if fatal(err) {
					return res, err
				}

				o.logger.Warn("Process launched but its progress was not fully replayed",
					"instance", instance.SourceID, "run_id", targetID, "error", err)
			}

			o.itemMigrated(ctx, run, checkpoint.PhaseInstances, KindInstance, instance.SourceID, targetID)
		}

		res.processed++
	}

	return res, nil
}

// replayProgress completes the tasks of a freshly launched run that were
// already done in the source, preserving who completed them and when, then
// archives the run when the source instance was archived.
func (o *Orchestrator) replayProgress(ctx context.Context, runID string, instance model.Instance) error {
	var completed []model.StepState

	for _, state := range instance.StepStates {
		if state.Completed {
			completed = append(completed, state)
		}
	}

	if len(completed) > 0 {
		tasks, err := o.target.RunTasks(ctx, runID)
		if err != nil {
			return fmt.Errorf("failed to list run tasks: %w", err)
		}

		byAlias := make(map[string]string, len(tasks))
		for _, task := range tasks {
			byAlias[task.Alias] = task.ID
		}

		for _, state := range completed {
			taskID, ok := byAlias[state.StepSourceID]
			if !ok {
				o.logger.Warn("No task matches a completed source step",
					"run_id", runID, "step", state.StepSourceID)

				continue
			}

			opts := tallyfy.CompleteTaskOptions{
				RunID:       runID,
				TaskID:      taskID,
				CompletedBy: state.CompletedBy,
			}
			if state.CompletedAt != nil {
				opts.CompletedAt = *state.CompletedAt
			}

			if err := o.target.CompleteTask(ctx, opts); err != nil {
				return fmt.Errorf("failed to complete task %s: %w", taskID, err)
			}
		}
	}

	if instance.Status == model.InstanceArchived {
		if err := o.target.ArchiveRun(ctx, runID); err != nil {
			return fmt.Errorf("failed to archive run: %w", err)
		}
	}

	return nil
}

// validate compares what the run recorded against the source inventory and
// the target directory. Findings come back as issues on the report; only
// infrastructure failures are errors.
func (o *Orchestrator) validate(ctx context.Context, run *checkpoint.Run) (phaseResult, error) {
	var res phaseResult

	if run.DryRun {
		o.logger.Info("Dry run, nothing to validate")

		return res, nil
	}

	mappings, err := o.store.MappingsByRun(ctx, run.ID)
	if err != nil {
		return res, fmt.Errorf("failed to load mappings: %w", err)
	}

	done := make(map[string]int)

	for _, mapping := range mappings {
		res.processed++

		if mapping.Status == checkpoint.MappingIntent {
			res.issues = append(res.issues, Issue{
				Phase:    checkpoint.PhaseValidation,
				Kind:     mapping.Kind,
				SourceID: mapping.SourceID,
				Message:  "creation started but never confirmed; run again with --resume to settle it",
			})

			continue
		}

		done[mapping.Kind]++
	}

	discovery, err := o.source.Discover(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to re-read the source inventory: %w", err)
	}

	res.issues = append(res.issues, countIssue(KindMember, done[KindMember], discovery.Members)...)
	res.issues = append(res.issues, countIssue(KindGroup, done[KindGroup], discovery.Groups)...)
	res.issues = append(res.issues, countIssue(KindTemplate, done[KindTemplate], discovery.Templates)...)
	res.issues = append(res.issues, countIssue(KindInstance, done[KindInstance], discovery.Instances)...)

	// Spot-check the target: everything marked done must actually be there.
	targetMembers, err := o.target.Members(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to list target members: %w", err)
	}

	inDirectory := make(map[string]bool, len(targetMembers))
	for _, member := range targetMembers {
		inDirectory[strings.ToLower(member.Email)] = true
	}

	targetGroups, err := o.target.Groups(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to list target groups: %w", err)
	}

	groupExists := make(map[string]bool, len(targetGroups))
	for _, group := range targetGroups {
		groupExists[group.ID] = true
	}

	for _, mapping := range mappings {
		if mapping.Status != checkpoint.MappingDone {
			continue
		}

		switch {
		case mapping.Kind == KindMember && !inDirectory[mapping.SourceID]:
			res.issues = append(res.issues, Issue{
				Phase:    checkpoint.PhaseValidation,
				Kind:     KindMember,
				SourceID: mapping.SourceID,
				Message:  "marked done but missing from the target directory",
			})
		case mapping.Kind == KindGroup && !groupExists[mapping.TargetID]:
			res.issues = append(res.issues, Issue{
				Phase:    checkpoint.PhaseValidation,
				Kind:     KindGroup,
				SourceID: mapping.SourceID,
				Message:  "marked done but missing from the target",
			})
		}
	}

	for i := range run.Phases {
		record := &run.Phases[i]

		if record.Failed > 0 {
			res.issues = append(res.issues, Issue{
				Phase: record.Phase,
				Message: fmt.Sprintf("%d of %d items failed; see the run log",
					record.Failed, record.Processed+record.Failed),
			})
		}

		if record.Status == checkpoint.PhaseFailed {
			res.issues = append(res.issues, Issue{
				Phase:   record.Phase,
				Message: "phase failed: " + record.Error,
			})
		}
	}

	for _, issue := range res.issues {
		o.logger.Warn("Validation issue",
			"phase", issue.Phase, "kind", issue.Kind, "source_id", issue.SourceID, "message", issue.Message)
	}

	o.logger.Info("Validation finished", "mappings", len(mappings), "issues", len(res.issues))

	return res, nil
}

func (o *Orchestrator) itemMigrated(
	ctx context.Context,
	run *checkpoint.Run,
	phase checkpoint.Phase,
	kind, sourceID, targetID string,
) {
	o.logger.Debug("Item migrated", "phase", phase, "kind", kind, "source_id", sourceID, "target_id", targetID)
	o.publish(ctx, run.ID, events.NewItemMigrated(run.ID, string(phase), kind, sourceID, targetID))
}

func (o *Orchestrator) itemFailed(
	ctx context.Context,
	run *checkpoint.Run,
	phase checkpoint.Phase,
	kind, sourceID string,
	err error,
) {
	o.logger.Warn("Item failed, continuing",
		"phase", phase, "kind", kind, "source_id", sourceID, "error", err)
	o.publish(ctx, run.ID, events.NewItemFailed(run.ID, string(phase), kind, sourceID, err.Error()))
}

func countIssue(kind string, got, want int) []Issue {
	if want <= 0 || got >= want {
		return nil
	}

	return []Issue{{
		Phase:   checkpoint.PhaseValidation,
		Kind:    kind,
		Message: fmt.Sprintf("%d of %d discovered %ss were migrated", got, want, kind),
	}}
}

func captureOptions(checklistID, stepID string, capture model.Capture) tallyfy.AddCaptureOptions {
	return tallyfy.AddCaptureOptions{
		ChecklistID: checklistID,
		StepID:      stepID,
		Alias:       capture.Alias,
		Label:       capture.Label,
		Type:        capture.Type,
		Required:    capture.Required,
		Options:     capture.Options,
		Position:    capture.Position,
		Guidance:    capture.Guidance,
	}
}

// stepAlias returns the alias steps are created under. Sources that do not
// assign aliases fall back to the source id, which instance replay relies on
// to match run tasks back to source steps.
func stepAlias(step model.Step) string {
	if step.Alias != "" {
		return step.Alias
	}

	return step.SourceID
}

func captureRef(capture model.Capture) string {
	if capture.Alias != "" {
		return capture.Alias
	}

	if capture.SourceID != "" {
		return capture.SourceID
	}

	return strconv.Itoa(capture.Position)
}

// stringFieldValues renders kickoff values for the launch payload. Booleans
// become the Yes/No the radio captures were generated with.
func stringFieldValues(values map[string]any) map[string]string {
	if len(values) == 0 {
		return nil
	}

	out := make(map[string]string, len(values))

	for field, value := range values {
		switch value := value.(type) {
		case nil:
			continue
		case string:
			if value == "" {
				continue
			}

			out[field] = value
		case bool:
			if value {
				out[field] = "Yes"
			} else {
				out[field] = "No"
			}
		case float64:
			out[field] = strconv.FormatFloat(value, 'f', -1, 64)
		default:
			out[field] = fmt.Sprint(value)
		}
	}

	if len(out) == 0 {
		return nil
	}

	return out
}
