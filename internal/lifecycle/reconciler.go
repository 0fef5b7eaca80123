package lifecycle

import "github.com/google/uuid"

// Reconcile сводит решения классификатора в один пакет без конфликтов.
// Если один и тот же id попал и в обновления, и в удаления - побеждает
// удаление: запись достаточно старая, чтобы уйти из хранилища сразу.
// Уже построенный преемник при этом сохраняется, у него свой id.
// Порядок стабильный: оставшиеся обновления, создания, удаления.
func Reconcile(updates []UpdateStatus, creates []CreateIfAbsent, deletes []DeleteByID) Batch {
	deleteIDs := make(map[uuid.UUID]struct{}, len(deletes))
	for _, d := range deletes {
		deleteIDs[d.ID] = struct{}{}
	}

	batch := make(Batch, 0, len(updates)+len(creates)+len(deletes))
	for _, u := range updates {
		if _, superseded := deleteIDs[u.ID]; superseded {
			continue
		}
		batch = append(batch, u)
	}
	for _, c := range creates {
		batch = append(batch, c)
	}
	for _, d := range deletes {
		batch = append(batch, d)
	}
	return batch
}
