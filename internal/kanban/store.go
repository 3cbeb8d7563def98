package kanban

import "github.com/starford/wunjo/internal/storage"

// Store loads and saves boards through the vault. Each operation is a full
// load-mutate-save cycle; the markdown file on disk is the only state.
type Store struct {
	files storage.Provider
}

func NewStore(files storage.Provider) *Store {
	return &Store{files: files}
}

// Board reads and parses the board at path.
func (s *Store) Board(path string) (*Board, error) {
	content, err := s.files.Read(path)
	if err != nil {
		return nil, err
	}
	return Parse(content), nil
}

// SaveBoard serializes the board and writes it to path.
func (s *Store) SaveBoard(path string, board *Board) error {
	return s.files.Write(path, []byte(Generate(board)))
}

func (s *Store) AddCard(path, laneTitle, text string, completed bool) (*Board, error) {
	board, err := s.Board(path)
	if err != nil {
		return nil, err
	}
	board.AddCard(laneTitle, text, completed)
	if err := s.SaveBoard(path, board); err != nil {
		return nil, err
	}
	return board, nil
}

func (s *Store) DeleteCard(path, laneTitle, text string, index int) (*Board, error) {
	board, err := s.Board(path)
	if err != nil {
		return nil, err
	}
	board.DeleteCard(laneTitle, text, index)
	if err := s.SaveBoard(path, board); err != nil {
		return nil, err
	}
	return board, nil
}

func (s *Store) MoveCard(path, fromLane string, fromIndex int, toLane string, toIndex int) (*Board, error) {
	board, err := s.Board(path)
	if err != nil {
		return nil, err
	}
	if err := board.MoveCard(fromLane, fromIndex, toLane, toIndex); err != nil {
		return nil, err
	}
	if err := s.SaveBoard(path, board); err != nil {
		return nil, err
	}
	return board, nil
}

func (s *Store) UpdateCard(path, laneTitle string, index int, update CardUpdate) (*Board, error) {
	board, err := s.Board(path)
	if err != nil {
		return nil, err
	}
	board.UpdateCard(laneTitle, index, update)
	if err := s.SaveBoard(path, board); err != nil {
		return nil, err
	}
	return board, nil
}
