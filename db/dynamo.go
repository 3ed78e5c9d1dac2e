package db

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/jsphweid/harmonseq/config"
	"github.com/jsphweid/harmonseq/model"
	"github.com/pkg/errors"
)

// maximum keys of a single BatchGetItem call
const maxBatch = 100

// DynamoStore keeps progressions in a DynamoDB table keyed by "PK". The
// chords are stored as a list attribute so their order survives.
type DynamoStore struct {
	client dynamodbiface.DynamoDBAPI
	table  string
}

func NewDynamoStore(cfg config.Dynamo) (*DynamoStore, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, errors.Wrap(err, "could not create a new DynamoDB session")
	}
	return NewDynamoStoreWithClient(dynamodb.New(sess), cfg.Table), nil
}

func NewDynamoStoreWithClient(client dynamodbiface.DynamoDBAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

func key(name string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		"PK": {S: aws.String(name)},
	}
}

func toItem(p model.Progression) map[string]*dynamodb.AttributeValue {
	item := key(p.Name)
	chords := make([]*dynamodb.AttributeValue, 0, len(p.Chords))
	for _, c := range p.Chords {
		chords = append(chords, &dynamodb.AttributeValue{S: aws.String(c)})
	}
	item["Chords"] = &dynamodb.AttributeValue{L: chords}
	return item
}

func fromItem(item map[string]*dynamodb.AttributeValue) model.Progression {
	var p model.Progression
	if v, ok := item["PK"]; ok && v.S != nil {
		p.Name = *v.S
	}
	if v, ok := item["Chords"]; ok {
		for _, c := range v.L {
			if c.S != nil {
				p.Chords = append(p.Chords, *c.S)
			}
		}
	}
	return p
}

func (d *DynamoStore) GetProgression(name string) (model.Progression, error) {
	out, err := d.client.GetItem(&dynamodb.GetItemInput{
		TableName: aws.String(d.table),
		Key:       key(name),
	})
	if err != nil {
		return model.Progression{}, errors.Wrapf(err, "getting progression %q", name)
	}
	if len(out.Item) == 0 {
		return model.Progression{}, ErrNotFound
	}
	return fromItem(out.Item), nil
}

// GetProgressions fetches up to 100 progressions in one round trip. Unknown
// names are left out of the result.
func (d *DynamoStore) GetProgressions(names []string) (map[string]model.Progression, error) {
	if len(names) > maxBatch {
		return nil, ErrTooManyNames
	}

	res := make(map[string]model.Progression)
	if len(names) == 0 {
		return res, nil
	}

	var keys []map[string]*dynamodb.AttributeValue
	for _, name := range names {
		keys = append(keys, key(name))
	}
	out, err := d.client.BatchGetItem(&dynamodb.BatchGetItemInput{
		RequestItems: map[string]*dynamodb.KeysAndAttributes{
			d.table: {Keys: keys},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "error from DynamoDB")
	}

	for _, item := range out.Responses[d.table] {
		p := fromItem(item)
		res[p.Name] = p
	}
	return res, nil
}

func (d *DynamoStore) PutProgression(p model.Progression) error {
	if p.Name == "" {
		return ErrInvalidName
	}
	_, err := d.client.PutItem(&dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      toItem(p),
	})
	return errors.Wrapf(err, "putting progression %q", p.Name)
}
