package persistence

import (
	"encoding/json"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// BadgerService 基于 Badger 的持久化服务。
// 快照按 key（含自然日）写入同一个 DB，适合长期多日留存；
// 与 JSONFileService 二选一，由配置决定。
type BadgerService struct {
	db *badger.DB
}

// OpenBadger 打开（必要时创建）Badger 数据库
func OpenBadger(path string) (*BadgerService, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "打开 badger 失败: path=%s", path)
	}
	return &BadgerService{db: db}, nil
}

// Close 关闭数据库
func (s *BadgerService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// NewStore 创建新的存储
func (s *BadgerService) NewStore(prefix, id, tag string) Store {
	return &badgerStore{
		db:  s.db,
		key: []byte(storeKey(prefix, id, tag)),
	}
}

type badgerStore struct {
	db  *badger.DB
	key []byte
}

func (s *badgerStore) Save(data interface{}) error {
	b, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "序列化快照失败")
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key, b)
	})
	return errors.Wrapf(err, "写入 badger 失败: key=%s", s.key)
}

func (s *badgerStore) Load(data interface{}) error {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw = append(raw[:0], val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotExists
	}
	if err != nil {
		return errors.Wrapf(err, "读取 badger 失败: key=%s", s.key)
	}
	if len(raw) == 0 {
		return ErrNotExists
	}
	return json.Unmarshal(raw, data)
}
