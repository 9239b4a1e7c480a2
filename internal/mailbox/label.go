package mailbox

import (
	"context"
	"fmt"
)

// ApplyLabel applies a label to a message, creating the label on first use.
// Label IDs are cached per account so a triage pass resolves each label
// once.
func (a *Adapter) ApplyLabel(ctx context.Context, messageID, labelName, account string) error {
	labelID, err := a.ensureLabel(ctx, account, labelName)
	if err != nil {
		return err
	}

	if _, err := a.svc.ModifyMessage(ctx, account, messageID, []string{labelID}); err != nil {
		return fmt.Errorf("apply label %q to %s failed: %w", labelName, messageID, err)
	}

	return nil
}

func (a *Adapter) ensureLabel(ctx context.Context, account, name string) (string, error) {
	key := account + "/" + name

	a.mu.Lock()
	if id, ok := a.labelCache[key]; ok {
		a.mu.Unlock()
		return id, nil
	}
	a.mu.Unlock()

	labels, err := a.svc.ListLabels(ctx, account)
	if err != nil {
		return "", fmt.Errorf("svc.ListLabels failed: %w", err)
	}

	for _, lbl := range labels.Labels {
		if lbl.Name == name {
			a.cacheLabel(key, lbl.Id)
			return lbl.Id, nil
		}
	}

	created, err := a.svc.CreateLabel(ctx, account, name)
	if err != nil {
		return "", fmt.Errorf("svc.CreateLabel failed: %w", err)
	}
	a.cacheLabel(key, created.Id)

	return created.Id, nil
}

func (a *Adapter) cacheLabel(key, id string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.labelCache[key] = id
}
