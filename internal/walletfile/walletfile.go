// Package walletfile persists a wallet seed in an encrypted, versioned file.
//
// Layout: magic "DWLT" | version (1 byte) | salt (16) | nonce (12) | AES-256-GCM
// sealed CBOR contents. The password is stretched with Argon2id over the salt
// and the result is bound to this file format with a blake3 derivation
// context. Version 3 files used blake3 alone and are no longer read.
package walletfile

import (
    "crypto/aes"
    "crypto/cipher"
    "crypto/rand"
    "errors"
    "io/fs"
    "os"
    "path/filepath"
    "strings"
    "syscall"

    "github.com/fxamacker/cbor/v2"
    "golang.org/x/crypto/argon2"
    "lukechampine.com/blake3"

    "github.com/grutesr1/DUSK-test/internal/errs"
)

const (
    // CurrentVersion is the only header version this client reads and writes.
    CurrentVersion uint8 = 4
    // Ext is appended to wallet names that lack it.
    Ext = ".dat"

    magic     = "DWLT"
    saltSize  = 16
    nonceSize = 12
    keySize   = 32
    headerLen = len(magic) + 1
    minLen    = headerLen + saltSize + nonceSize + 16

    keyContext = "dusk wallet file 2024 encryption key"
)

// Argon2id cost, fixed by the file version. Memory is in KiB.
const (
    kdfTime    uint32 = 2
    kdfMemory  uint32 = 64 * 1024
    kdfThreads uint8  = 4
)

// Contents is the plaintext protected by a wallet file.
type Contents struct {
    Seed      []byte `cbor:"1,keyasint"`
    Addresses uint8  `cbor:"2,keyasint"`
}

// File is an opened wallet file. It keeps the derived key, never the password.
type File struct {
    path string
    salt [saltSize]byte
    key  [keySize]byte
}

// Path returns the location of the file on disk.
func (f *File) Path() string { return f.path }

// Resolve returns the on-disk path for a wallet name inside dir.
func Resolve(dir, name string) (string, error) {
    name = strings.TrimSpace(name)
    if name == "" {
        return "", errs.ErrWalletFileMissing
    }
    if !strings.HasSuffix(name, Ext) {
        name += Ext
    }
    return filepath.Join(dir, name), nil
}

// Exists reports whether a wallet file with this name is present in dir.
func Exists(dir, name string) (bool, error) {
    path, err := Resolve(dir, name)
    if err != nil {
        return false, err
    }
    if err := checkDir(dir); err != nil {
        if errors.Is(err, errs.ErrWalletFileNotExists) {
            return false, nil
        }
        return false, err
    }
    _, err = os.Stat(path)
    switch {
    case err == nil:
        return true, nil
    case errors.Is(err, fs.ErrNotExist):
        return false, nil
    }
    return false, errs.FromIO(err)
}

// Create writes a new wallet file. It refuses to overwrite an existing one.
func Create(dir, name, password string, c Contents) (*File, error) {
    path, err := Resolve(dir, name)
    if err != nil {
        return nil, err
    }
    if err := os.MkdirAll(dir, 0o700); err != nil {
        if errors.Is(err, syscall.ENOTDIR) || errors.Is(err, fs.ErrExist) {
            return nil, errs.NotDirectory(dir)
        }
        return nil, errs.FromIO(err)
    }
    if err := checkDir(dir); err != nil {
        return nil, err
    }
    if _, err := os.Stat(path); err == nil {
        return nil, errs.ErrWalletFileExists
    } else if !errors.Is(err, fs.ErrNotExist) {
        return nil, errs.FromIO(err)
    }

    f := &File{path: path}
    if _, err := rand.Read(f.salt[:]); err != nil {
        return nil, errs.FromRng(err)
    }
    f.key = deriveKey(password, f.salt)
    if err := f.Save(c); err != nil {
        return nil, err
    }
    return f, nil
}

// Open reads and decrypts a wallet file.
func Open(dir, name, password string) (*File, Contents, error) {
    path, err := Resolve(dir, name)
    if err != nil {
        return nil, Contents{}, err
    }
    if err := checkDir(dir); err != nil {
        return nil, Contents{}, err
    }
    raw, err := os.ReadFile(path)
    if err != nil {
        if errors.Is(err, fs.ErrNotExist) {
            return nil, Contents{}, errs.ErrWalletFileNotExists
        }
        return nil, Contents{}, errs.FromIO(err)
    }
    return decode(path, raw, password)
}

func decode(path string, raw []byte, password string) (*File, Contents, error) {
    if len(raw) < headerLen || string(raw[:len(magic)]) != magic {
        return nil, Contents{}, errs.ErrWalletFileCorrupted
    }
    if v := raw[len(magic)]; v != CurrentVersion {
        return nil, Contents{}, errs.UnknownFileVersion(v, CurrentVersion)
    }
    if len(raw) < minLen {
        return nil, Contents{}, errs.ErrWalletFileCorrupted
    }

    f := &File{path: path}
    body := raw[headerLen:]
    copy(f.salt[:], body[:saltSize])
    nonce := body[saltSize : saltSize+nonceSize]
    sealed := body[saltSize+nonceSize:]
    f.key = deriveKey(password, f.salt)

    aead, err := newAEAD(f.key[:])
    if err != nil {
        return nil, Contents{}, errs.FromCipher(err)
    }
    plain, err := aead.Open(nil, nonce, sealed, raw[:headerLen])
    if err != nil {
        return nil, Contents{}, errs.FromCipher(err)
    }
    var c Contents
    if err := cbor.Unmarshal(plain, &c); err != nil {
        return nil, Contents{}, errs.ErrWalletFileCorrupted
    }
    if len(c.Seed) != 64 {
        return nil, Contents{}, errs.ErrWalletFileCorrupted
    }
    return f, c, nil
}

// Save encrypts c under the file's key and replaces the file atomically.
func (f *File) Save(c Contents) error {
    plain, err := cbor.Marshal(c)
    if err != nil {
        return errs.FromCanon(err)
    }
    aead, err := newAEAD(f.key[:])
    if err != nil {
        return errs.FromCipher(err)
    }
    nonce := make([]byte, nonceSize)
    if _, err := rand.Read(nonce); err != nil {
        return errs.FromRng(err)
    }

    header := append([]byte(magic), CurrentVersion)
    out := make([]byte, 0, minLen+len(plain))
    out = append(out, header...)
    out = append(out, f.salt[:]...)
    out = append(out, nonce...)
    out = aead.Seal(out, nonce, plain, header)

    tmp := f.path + ".tmp"
    if err := os.WriteFile(tmp, out, 0o600); err != nil {
        return errs.FromIO(err)
    }
    if err := os.Rename(tmp, f.path); err != nil {
        _ = os.Remove(tmp)
        return errs.FromIO(err)
    }
    return nil
}

func checkDir(dir string) error {
    fi, err := os.Stat(dir)
    if err != nil {
        if errors.Is(err, fs.ErrNotExist) {
            return errs.ErrWalletFileNotExists
        }
        return errs.FromIO(err)
    }
    if !fi.IsDir() {
        return errs.NotDirectory(dir)
    }
    return nil
}

func deriveKey(password string, salt [saltSize]byte) [keySize]byte {
    stretched := argon2.IDKey([]byte(password), salt[:], kdfTime, kdfMemory, kdfThreads, keySize)
    var key [keySize]byte
    blake3.DeriveKey(key[:], keyContext, stretched)
    return key
}

func newAEAD(key []byte) (cipher.AEAD, error) {
    block, err := aes.NewCipher(key)
    if err != nil {
        return nil, err
    }
    return cipher.NewGCMWithNonceSize(block, nonceSize)
}
