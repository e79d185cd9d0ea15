package domain

// Student описывает студента, который может бронировать аудитории.
//
// Список бронирований студента не хранится в самой сущности: связь
// студент → бронирования выводится из индекса участников в хранилище бронирований.
type Student struct {
	ID        string
	FirstName string
	LastName  string
}

// NewStudent создаёт студента и проверяет его инварианты.
func NewStudent(id, firstName, lastName string) (Student, error) {
	student := Student{ID: id, FirstName: firstName, LastName: lastName}
	if err := student.Validate(); err != nil {
		return Student{}, err
	}
	return student, nil
}

// Validate проверяет обязательные поля студента.
func (s Student) Validate() error {
	if isBlank(s.ID) {
		return InvalidArgument("student id is required")
	}
	if isBlank(s.FirstName) {
		return InvalidArgument("first name is required")
	}
	if isBlank(s.LastName) {
		return InvalidArgument("last name is required")
	}
	return nil
}

// FullName возвращает имя и фамилию через пробел.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
