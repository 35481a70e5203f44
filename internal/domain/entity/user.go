package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingName  UserState = "awaiting_name"  // Ожидание имени пациента
	StateAwaitingAge   UserState = "awaiting_age"   // Ожидание возраста
	StateAwaitingPhoto UserState = "awaiting_photo" // Ожидание фото кожи
	StateProcessing    UserState = "processing"     // Обработка изображения
)

// transitions допустимые переходы конечного автомата
var transitions = map[UserState][]UserState{
	StateMainMenu:      {StateAwaitingName},
	StateAwaitingName:  {StateAwaitingAge},
	StateAwaitingAge:   {StateAwaitingPhoto},
	StateAwaitingPhoto: {StateProcessing},
	StateProcessing:    {StateMainMenu, StateAwaitingPhoto},
}

// User представляет пользователя бота
type User struct {
	ID      int64     `json:"id"`      // Telegram User ID
	ChatID  int64     `json:"chat_id"` // Telegram Chat ID
	State   UserState `json:"state"`   // Текущее состояние пользователя
	Patient Patient   `json:"patient"` // Данные, собранные на шагах анкеты
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// CanTransition проверяет, разрешён ли переход из текущего состояния.
// Возврат в главное меню разрешён всегда.
func (u *User) CanTransition(next UserState) bool {
	if next == StateMainMenu {
		return true
	}
	for _, s := range transitions[u.State] {
		if s == next {
			return true
		}
	}
	return false
}

// Reset возвращает пользователя в главное меню и забывает данные анкеты
func (u *User) Reset() {
	u.State = StateMainMenu
	u.Patient = Patient{}
}
